package cookiestore

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		cookie   *http.Cookie
		expected []string
	}{
		{
			name:     "quoted version is unquoted",
			cookie:   &http.Cookie{Name: "myacinfo", Value: "abc", Unparsed: []string{`Version="1"`}},
			expected: []string{"Version=1"},
		},
		{
			name:     "lowercase attribute name",
			cookie:   &http.Cookie{Name: "s", Value: "v", Unparsed: []string{`version="2"`}},
			expected: []string{"version=2"},
		},
		{
			name:     "bare version untouched",
			cookie:   &http.Cookie{Name: "s", Value: "v", Unparsed: []string{"Version=1"}},
			expected: []string{"Version=1"},
		},
		{
			name:     "no version attribute",
			cookie:   &http.Cookie{Name: "s", Value: "v", Unparsed: []string{"Discard"}},
			expected: []string{"Discard"},
		},
		{
			name:     "other attributes preserved",
			cookie:   &http.Cookie{Name: "s", Value: "v", Unparsed: []string{"Discard", `Version="1"`}},
			expected: []string{"Discard", "Version=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]*http.Cookie{tt.cookie})
			require.Len(t, got, 1)
			assert.Equal(t, tt.expected, got[0].Unparsed)
			assert.Equal(t, tt.cookie.Name, got[0].Name)
			assert.Equal(t, tt.cookie.Value, got[0].Value)
		})
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	c := &http.Cookie{Name: "s", Value: "v", Unparsed: []string{`Version="1"`}}
	Normalize([]*http.Cookie{c})
	assert.Equal(t, []string{`Version="1"`}, c.Unparsed)
}

func TestJar_RoundTrip(t *testing.T) {
	jar, err := New()
	require.NoError(t, err)

	u, err := url.Parse("https://itunesconnect.apple.com/some/path")
	require.NoError(t, err)

	jar.SetCookies(u, []*http.Cookie{
		{Name: "myacinfo", Value: "token", Path: "/", Unparsed: []string{`Version="1"`}},
		{Name: "wosid", Value: "abc", Path: "/"},
	})

	got := jar.Cookies(u)
	require.Len(t, got, 2)
	names := map[string]string{}
	for _, c := range got {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "token", names["myacinfo"])
	assert.Equal(t, "abc", names["wosid"])
}

func TestJar_DomainIsolation(t *testing.T) {
	jar, err := New()
	require.NoError(t, err)

	itc, _ := url.Parse("https://itunesconnect.apple.com/")
	other, _ := url.Parse("https://example.com/")

	jar.SetCookies(itc, []*http.Cookie{{Name: "myacinfo", Value: "token", Path: "/"}})

	assert.Empty(t, jar.Cookies(other))
	assert.Len(t, jar.Cookies(itc), 1)
}
