package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCSRFMissingToken(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/comments", strings.NewReader("text=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	errs := decodeErrors(t, w.Body.Bytes())
	if len(errs[csrfFormField]) != 1 || errs[csrfFormField][0] != msgCSRFMissing {
		t.Errorf("errors = %v", errs)
	}
}

func TestCSRFInvalidToken(t *testing.T) {
	srv := testServer(t)
	cookie := csrfCookie(t, srv)

	tests := []struct {
		name   string
		token  string
		cookie *http.Cookie
	}{
		{"forged", "abc.def", cookie},
		{"no cookie", cookie.Value, nil},
		{"mismatched cookie", srv.csrf.issue(), cookie},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/comments/1/like", nil)
			req.Header.Set(csrfHeaderName, tt.token)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			srv.Router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			errs := decodeErrors(t, w.Body.Bytes())
			if len(errs[csrfFormField]) != 1 || errs[csrfFormField][0] != msgCSRFInvalid {
				t.Errorf("errors = %v", errs)
			}
		})
	}
}

func TestCSRFTokenFromOtherSecretRejected(t *testing.T) {
	other, err := newCSRFGuard([]byte("other"), false)
	if err != nil {
		t.Fatalf("newCSRFGuard: %v", err)
	}
	g, _ := newCSRFGuard([]byte("mine"), false)

	if g.valid(other.issue()) {
		t.Error("token signed with another secret accepted")
	}
	if !g.valid(g.issue()) {
		t.Error("own token rejected")
	}
	for _, bad := range []string{"", "nodot", ".sig", "nonce."} {
		if g.valid(bad) {
			t.Errorf("valid(%q) = true", bad)
		}
	}
}

func TestCSRFGuardGeneratesSecret(t *testing.T) {
	g, err := newCSRFGuard(nil, false)
	if err != nil {
		t.Fatalf("newCSRFGuard: %v", err)
	}
	if len(g.secret) != 32 {
		t.Errorf("secret length = %d", len(g.secret))
	}
}

func TestCSRFTokenReused(t *testing.T) {
	srv := testServer(t)
	cookie := csrfCookie(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)

	if len(w.Result().Cookies()) != 0 {
		t.Error("expected no new cookie for a valid existing token")
	}
	if !strings.Contains(w.Body.String(), cookie.Value) {
		t.Error("page should embed the existing token")
	}
}

func TestCSRFCookieAttributes(t *testing.T) {
	srv := testServerWith(t, Config{SecureCookies: true})
	c := csrfCookie(t, srv)
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie attributes = %+v", c)
	}
}
