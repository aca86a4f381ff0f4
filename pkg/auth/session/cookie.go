package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
)

// CookieCodec signs session ids into cookie values and verifies them back.
// The cookie carries `<id>.<hmac-sha256(id)>`; a bad or missing signature is
// treated the same as no cookie at all.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCookieCodec(cfg config.SessionConfig) *CookieCodec {
	return &CookieCodec{
		name:   cfg.CookieName,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		secure: cfg.Secure,
	}
}

// Write sets the session cookie on the response.
func (c *CookieCodec) Write(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    c.encode(sessionID),
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read extracts and verifies the session id from the request cookie. It
// returns "" when the cookie is absent, malformed, or tampered with.
func (c *CookieCodec) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return c.decode(cookie.Value)
}

func (c *CookieCodec) encode(sessionID string) string {
	return sessionID + "." + c.sign(sessionID)
}

func (c *CookieCodec) decode(value string) string {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 {
		return ""
	}
	sessionID, sig := value[:idx], value[idx+1:]
	if subtle.ConstantTimeCompare([]byte(sig), []byte(c.sign(sessionID))) != 1 {
		return ""
	}
	return sessionID
}

func (c *CookieCodec) sign(sessionID string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
