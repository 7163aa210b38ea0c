package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	csrfCookieName = "ww_csrf"
	csrfHeaderName = "X-CSRFToken"
	csrfFormField  = "csrf_token"

	msgCSRFMissing = "The CSRF token is missing."
	msgCSRFInvalid = "The CSRF token is invalid."
)

// csrfGuard issues and checks double-submit CSRF tokens. A token is a random
// nonce plus its HMAC; the page meta tag and the ww_csrf cookie carry the
// same token, and mutating requests must echo it in X-CSRFToken.
type csrfGuard struct {
	secret []byte
	secure bool
}

func newCSRFGuard(secret []byte, secure bool) (*csrfGuard, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating csrf secret: %w", err)
		}
	}
	return &csrfGuard{secret: secret, secure: secure}, nil
}

func (g *csrfGuard) sign(nonce string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *csrfGuard) issue() string {
	nonce := uuid.NewString()
	return nonce + "." + g.sign(nonce)
}

func (g *csrfGuard) valid(token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(g.sign(nonce)))
}

// tokenFor returns the request's existing token when it is still valid,
// otherwise issues a new one and sets the cookie.
func (g *csrfGuard) tokenFor(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && g.valid(c.Value) {
		return c.Value
	}
	token := g.issue()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// middleware rejects requests without a valid token matching the cookie.
func (g *csrfGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(csrfHeaderName)
		if token == "" {
			if err := parseForm(r); isBodyTooLarge(err) {
				jsonError(w, msgBodyTooLarge, http.StatusRequestEntityTooLarge)
				return
			}
			token = r.PostFormValue(csrfFormField)
		}
		if token == "" {
			csrfError(w, msgCSRFMissing)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || !g.valid(token) ||
			!hmac.Equal([]byte(cookie.Value), []byte(token)) {
			csrfError(w, msgCSRFInvalid)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func csrfError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"errors": map[string][]string{csrfFormField: {msg}},
	})
}
