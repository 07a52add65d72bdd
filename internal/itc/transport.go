package itc

import (
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"

	"github.com/itckit/tfinvite/internal/cookiestore"
)

var (
	// ErrInvalidProxyURL is returned for proxy addresses that cannot be
	// parsed into scheme://host form.
	ErrInvalidProxyURL = errors.New("itc: invalid proxy URL")
	// ErrUnsupportedProxyScheme is returned for proxy schemes other than
	// http, https and socks5.
	ErrUnsupportedProxyScheme = errors.New("itc: unsupported proxy scheme")
)

var supportedProxySchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"socks5": true,
}

// newHTTPClient builds the client a Session owns for its lifetime: a
// cookiestore-backed jar plus an optional outbound proxy. An empty
// proxyURL yields a direct client.
func newHTTPClient(proxyURL string) (*http.Client, error) {
	jar, err := cookiestore.New()
	if err != nil {
		return nil, err
	}
	if proxyURL == "" {
		return &http.Client{Jar: jar}, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, ErrInvalidProxyURL
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrInvalidProxyURL
	}
	if !supportedProxySchemes[parsed.Scheme] {
		return nil, ErrUnsupportedProxyScheme
	}

	transport := &http.Transport{}
	if parsed.Scheme == "socks5" {
		var auth *proxy.Auth
		if parsed.User != nil {
			pass, _ := parsed.User.Password()
			auth = &proxy.Auth{
				User:     parsed.User.Username(),
				Password: pass,
			}
		}
		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return nil, err
		}
		transport.Dial = dialer.Dial
	} else {
		transport.Proxy = http.ProxyURL(parsed)
	}

	return &http.Client{Transport: transport, Jar: jar}, nil
}
