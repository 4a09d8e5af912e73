package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAccessToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		header string
		want   string
	}{
		{"CookieWinsOverHeader", &http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"}, "Bearer from-header", "from-cookie"},
		{"HeaderOnly", nil, "Bearer from-header", "from-header"},
		{"EmptyCookieUsesHeader", &http.Cookie{Name: AccessTokenCookie, Value: ""}, "Bearer from-header", "from-header"},
		{"LowercaseScheme", nil, "bearer  abc.def ", "abc.def"},
		{"BasicScheme", nil, "Basic dXNlcjpwYXNz", ""},
		{"SchemeWithoutToken", nil, "Bearer", ""},
		{"Nothing", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractAccessToken(req))
		})
	}
}
