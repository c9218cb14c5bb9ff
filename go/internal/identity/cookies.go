package identity

import (
	"net/http"
)

// CookieReader reads request cookies. *http.Request satisfies it. Reading is
// allowed everywhere, including page rendering.
type CookieReader interface {
	Cookie(name string) (*http.Cookie, error)
}

// CookieWriter sets response cookies. Only the session middleware holds one.
type CookieWriter interface {
	SetCookie(c *http.Cookie)
}

// ResponseCookies writes cookies onto an http.ResponseWriter.
type ResponseCookies struct {
	w http.ResponseWriter
}

// NewResponseCookies wraps w as a CookieWriter.
func NewResponseCookies(w http.ResponseWriter) ResponseCookies {
	return ResponseCookies{w: w}
}

func (rc ResponseCookies) SetCookie(c *http.Cookie) {
	http.SetCookie(rc.w, c)
}
