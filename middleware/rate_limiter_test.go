package middleware

import (
	"net/http/httptest"
	"testing"
)

func TestClientIPGenericUntrustedIgnoresForwarded(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Header.Set("X-Forwarded-For", "10.0.0.5")

	if got := clientIPGeneric(r, nil); got != "203.0.113.9" {
		t.Fatalf("expected remote addr host, got %q", got)
	}
}

func TestClientIPGenericTrustedProxyUsesForwarded(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.RemoteAddr = "10.0.0.1:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

	if got := clientIPGeneric(r, []string{"10.0.0.0/8"}); got != "198.51.100.7" {
		t.Fatalf("expected forwarded client, got %q", got)
	}
}

func TestClientIPGenericTrustedExactIPUsesRealIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/tasks", nil)
	r.RemoteAddr = "192.0.2.10:8080"
	r.Header.Set("X-Real-IP", "198.51.100.20")

	if got := clientIPGeneric(r, []string{"192.0.2.10"}); got != "198.51.100.20" {
		t.Fatalf("expected X-Real-IP value, got %q", got)
	}
}

func TestRouteCategory(t *testing.T) {
	cases := map[string]string{
		"/v1/auth/login":        "auth",
		"/v1/auth/register":     "auth",
		"/v1/users/profile":     "upload",
		"/v1/users/flows/start": "flows",
		"/v1/tasks":             "api",
	}
	for path, want := range cases {
		if got := routeCategory(path); got != want {
			t.Fatalf("routeCategory(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLockoutAfterRepeatedFailures(t *testing.T) {
	const uid = 9001
	ResetFailedLogin(uid)

	for i := 0; i < 5; i++ {
		RecordFailedLogin(uid)
	}
	if locked, _ := IsAccountLocked(uid); locked {
		t.Fatalf("account should not be locked after 5 failures")
	}

	RecordFailedLogin(uid)
	locked, remaining := IsAccountLocked(uid)
	if !locked {
		t.Fatalf("account should be locked after 6 failures")
	}
	if remaining <= 0 {
		t.Fatalf("expected positive lock duration, got %v", remaining)
	}

	ResetFailedLogin(uid)
	if locked, _ := IsAccountLocked(uid); locked {
		t.Fatalf("reset should clear the lock")
	}
}
