package gotrue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "friendchat-service/internal/pkg/errors"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *AdminClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAdminClient(srv.URL, "service-key", "anon-key", zap.NewNop())
}

func TestCreateUserSuccess(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body["id"] != "user-1" || body["email"] != "a@b.c" {
			t.Fatalf("unexpected request body: %v", body)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"user-1"}`))
	})

	if err := c.CreateUser(context.Background(), "user-1", "a@b.c"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("expected service key bearer, got %q", gotAuth)
	}
	if gotPath != "/admin/users" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestCreateUserIdempotentOnConflict(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"msg":"A user with this email address has already been registered"}`))
		})

		if err := c.CreateUser(context.Background(), "user-1", "a@b.c"); err != nil {
			t.Fatalf("status %d: expected already-registered to be success, got %v", status, err)
		}
	}
}

func TestCreateUserTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"msg":"database unavailable"}`))
	})

	err := c.CreateUser(context.Background(), "user-1", "a@b.c")
	if !xerrors.Is(err, xerrors.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestGenerateOTP(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/generate_link" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["type"] != "magiclink" {
			t.Fatalf("expected magiclink request, got %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"email_otp": "123456", "action_link": "https://x"})
	})

	otp, err := c.GenerateOTP(context.Background(), "a@b.c")
	if err != nil {
		t.Fatalf("GenerateOTP failed: %v", err)
	}
	if otp != "123456" {
		t.Fatalf("expected otp 123456, got %q", otp)
	}
}

func TestGenerateOTPMissingCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"action_link": "https://x"})
	})

	if _, err := c.GenerateOTP(context.Background(), "a@b.c"); !xerrors.Is(err, xerrors.ErrTransport) {
		t.Fatalf("expected ErrTransport for missing email_otp, got %v", err)
	}
}

func TestRevokeSessionUsesSessionBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logout" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer the-session-token" {
			t.Fatalf("expected session bearer, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.RevokeSession(context.Background(), "the-session-token"); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
}
