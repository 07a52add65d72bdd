// Package cookiestore provides the cookie jar used for iTunes Connect
// sessions. It behaves like a standard RFC-compliant jar except for one
// normalization rule: the identity provider sends the cookie Version
// attribute quoted ("1" instead of 1), which numeric-only cookie policy
// validators reject. The jar strips those quotes at ingestion so the rest
// of the client never sees the quirk.
package cookiestore

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Jar is an http.CookieJar that normalizes quoted Version attributes
// before delegating to a standard cookiejar.Jar.
type Jar struct {
	inner *cookiejar.Jar
}

// New creates an empty Jar.
func New() (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Jar{inner: inner}, nil
}

// SetCookies stores the cookies for the given URL, normalizing each one
// first.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, Normalize(cookies))
}

// Cookies returns the cookies to send in a request to the given URL.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Normalize returns the given cookies with any quoted Version attribute
// value unquoted. Cookies without a Version attribute are returned
// untouched. The input slice is not modified.
func Normalize(cookies []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, normalize(c))
	}
	return out
}

func normalize(c *http.Cookie) *http.Cookie {
	for i, attr := range c.Unparsed {
		name, value, ok := strings.Cut(attr, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "version") {
			continue
		}
		unquoted, changed := unquote(value)
		if !changed {
			continue
		}
		nc := *c
		nc.Unparsed = append([]string(nil), c.Unparsed...)
		nc.Unparsed[i] = strings.TrimSpace(name) + "=" + unquoted
		return &nc
	}
	return c
}

// unquote strips one pair of surrounding double quotes. It reports
// whether anything was stripped.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}
