package model

import "testing"

func TestUserHomePath(t *testing.T) {
	cases := []struct {
		role string
		want string
	}{
		{"administrador_area", "/admin"},
		{"superusuario", "/admin"},
		{"admin", "/admin"},
		{"Administrador_Area", "/admin"},
		{"empleado", "/user"},
		{"", "/user"},
	}

	for _, tc := range cases {
		u := User{Role: Role{Name: tc.role}}
		if got := u.HomePath(); got != tc.want {
			t.Errorf("role %q: HomePath() = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestUserFullName(t *testing.T) {
	u := User{FirstName: "Ana", LastName: "Pérez"}
	if got := u.FullName(); got != "Ana Pérez" {
		t.Errorf("FullName() = %q", got)
	}

	empty := User{}
	if got := empty.FullName(); got != "" {
		t.Errorf("FullName() on empty user = %q", got)
	}
}

func TestStatusIs(t *testing.T) {
	s := Status{Name: "Completed"}
	if !s.Is(StatusCompleted) {
		t.Error("status comparison should ignore case")
	}
	if s.Is(StatusPending) {
		t.Error("completed should not match pending")
	}
}

func TestResultPassed(t *testing.T) {
	if !(&Result{Status: "Aprobado"}).Passed() {
		t.Error("Aprobado should pass regardless of case")
	}
	if (&Result{Status: "Reprobado"}).Passed() {
		t.Error("Reprobado should not pass")
	}
}
