package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestSessionRoundTrip(t *testing.T) {
	s := NewService("secret", "")

	result, err := s.StartSession("  Ada  ", "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if result.User.DisplayName != "Ada" {
		t.Errorf("display name = %q", result.User.DisplayName)
	}

	user, err := s.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if user.ID != result.User.ID || user.DisplayName != "Ada" {
		t.Errorf("validated user = %+v, want %+v", user, result.User)
	}
}

func TestSessionRequiresPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	s := NewService("secret", string(hash))

	if _, err := s.StartSession("Ada", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := s.StartSession("Ada", "hunter22"); err != nil {
		t.Fatalf("right password err = %v", err)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	s := NewService("secret", "")
	result, _ := s.StartSession("Ada", "")

	other := NewService("other-secret", "")
	if _, err := other.ValidateToken(result.Token); err == nil {
		t.Error("token signed with another secret should fail")
	}

	s.now = func() time.Time { return time.Now().Add(2 * sessionTTL) }
	if _, err := s.ValidateToken(result.Token); err == nil {
		t.Error("expired token should fail")
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := NewService("secret", "")
	result, _ := s.StartSession("Ada", "")

	var seen string
	h := s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic x") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+result.Token) }, http.StatusOK},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=" + result.Token }, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusOK && seen != result.User.ID {
				t.Errorf("context user = %q", seen)
			}
		})
	}
}

func TestStartSessionHandler(t *testing.T) {
	h := NewHandler(NewService("secret", ""))

	body, _ := json.Marshal(sessionRequest{DisplayName: "Ada"})
	rec := httptest.NewRecorder()
	h.StartSession(rec, httptest.NewRequest(http.MethodPost, "/auth/session", bytes.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var result SessionResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Token == "" || result.User.ID == "" {
		t.Errorf("result = %+v", result)
	}

	rec = httptest.NewRecorder()
	h.StartSession(rec, httptest.NewRequest(http.MethodPost, "/auth/session", bytes.NewReader([]byte("{"))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", rec.Code)
	}
}
