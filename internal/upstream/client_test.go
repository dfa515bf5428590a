package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hospital_training_portal/internal/util"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestRetryAfterRefreshSucceeds(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{{"id": "tr-1", "title": "t"}})
	}))

	var refreshed int32
	c.SetRefreshHook(func(ctx context.Context) bool {
		atomic.AddInt32(&refreshed, 1)
		return true
	})

	trainings, err := c.ListTrainings(context.Background())
	if err != nil {
		t.Fatalf("ListTrainings: %v", err)
	}
	if len(trainings) != 1 {
		t.Errorf("got %d trainings", len(trainings))
	}
	if refreshed != 1 {
		t.Errorf("refresh hook called %d times, want 1", refreshed)
	}
	if calls != 2 {
		t.Errorf("upstream hit %d times, want 2", calls)
	}
}

func TestFailedRefreshIsAuthExpired(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	c.SetRefreshHook(func(ctx context.Context) bool { return false })

	_, err := c.ListTrainings(context.Background())
	if !errors.Is(err, util.ErrAuthExpired) {
		t.Errorf("err = %v, want ErrAuthExpired", err)
	}
}

func TestSecond401IsAuthExpired(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	c.SetRefreshHook(func(ctx context.Context) bool { return true })

	_, err := c.ListTrainings(context.Background())
	if !errors.Is(err, util.ErrAuthExpired) {
		t.Errorf("err = %v, want ErrAuthExpired", err)
	}
	if calls != 2 {
		t.Errorf("upstream hit %d times, want exactly 2 (no endless retry)", calls)
	}
}

func TestNoRefreshHookIsAuthExpired(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.ListTrainings(context.Background())
	if !errors.Is(err, util.ErrAuthExpired) {
		t.Errorf("err = %v, want ErrAuthExpired", err)
	}
}

func TestLoginNeverTriggersRefresh(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Credenciales inválidas"})
	}))
	c.SetRefreshHook(func(ctx context.Context) bool {
		t.Error("refresh hook must not run for auth endpoints")
		return false
	})

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	var rErr *util.RequestError
	if !errors.As(err, &rErr) {
		t.Fatalf("err = %v, want RequestError", err)
	}
	if rErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", rErr.Status)
	}
	if rErr.Message != "Credenciales inválidas" {
		t.Errorf("message = %q, want the upstream detail", rErr.Message)
	}
}

func TestRetryResendsJSONBody(t *testing.T) {
	var bodies []string
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		data, _ := json.Marshal(payload)
		bodies = append(bodies, string(data))

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	c.SetRefreshHook(func(ctx context.Context) bool { return true })

	err := c.UpsertUserAnswer(context.Background(), AnswerUpsert{QuestionID: "q-1", OptionID: "o-1"})
	if err != nil {
		t.Fatalf("UpsertUserAnswer: %v", err)
	}
	if len(bodies) != 2 || bodies[0] != bodies[1] {
		t.Errorf("retried body differs: %v", bodies)
	}
	if bodies[0] == "null" {
		t.Error("body was not resent on retry")
	}
}

func TestUserTrainings404IsEmptyList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "No trainings found"})
	}))

	items, err := c.UserTrainings(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("UserTrainings: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("items = %v, want empty non-nil slice", items)
	}
}

func TestServerMessageFallbacks(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail field", `{"detail":"boom"}`, "boom"},
		{"message field", `{"message":"broke"}`, "broke"},
		{"raw text", "plain failure", "plain failure"},
		{"empty body", "", "upstream returned status 500"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := serverMessage([]byte(tc.body), 500); got != tc.want {
				t.Errorf("serverMessage(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestMalformedPayloadIsValidationError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))

	_, err := c.ListTrainings(context.Background())
	var vErr *util.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestChangePasswordUsesQueryParams(t *testing.T) {
	var gotNew, gotLast string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotNew = r.URL.Query().Get("new_password")
		gotLast = r.URL.Query().Get("last_password")
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.ChangePassword(context.Background(), "u-1", "oldpass99", "newpass99"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if gotNew != "newpass99" || gotLast != "oldpass99" {
		t.Errorf("query params new=%q last=%q", gotNew, gotLast)
	}
}
