package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPartialSubmissionErrorMessage(t *testing.T) {
	err := &PartialSubmissionError{Index: 2, Err: errors.New("timeout")}
	want := "saving answer for question 3 failed: timeout"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, err.Err) {
		t.Error("Unwrap should expose the cause")
	}
}

func statusFor(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, err)
	return w.Code
}

func TestFromErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"auth expired", ErrAuthExpired, http.StatusUnauthorized},
		{"not authenticated", ErrNotAuthenticated, http.StatusUnauthorized},
		{"no questionnaire", ErrNoQuestionnaire, http.StatusNotFound},
		{"validation", NewValidationError("email", "is required"), http.StatusBadRequest},
		{"partial submission", &PartialSubmissionError{Index: 0, Err: errors.New("x")}, http.StatusBadGateway},
		{"upstream 409", &RequestError{Status: 409, Message: "conflict"}, http.StatusConflict},
		{"upstream no status", &RequestError{Message: "dial tcp refused"}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFor(t, tc.err); got != tc.want {
				t.Errorf("status = %d, want %d", got, tc.want)
			}
		})
	}
}
