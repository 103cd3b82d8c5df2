package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekit/internal/app"
	"tablekit/internal/config"
)

func TestCurlHostForListenAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		listenAddr string
		want       string
	}{
		{name: "port only", listenAddr: ":8080", want: "localhost:8080"},
		{name: "loopback name", listenAddr: "localhost:3000", want: "localhost:3000"},
		{name: "ipv4 host and port", listenAddr: "127.0.0.1:8080", want: "127.0.0.1:8080"},
		{name: "wildcard ipv4", listenAddr: "0.0.0.0:8080", want: "localhost:8080"},
		{name: "wildcard ipv6", listenAddr: "[::]:8080", want: "localhost:8080"},
		{name: "ipv6 loopback", listenAddr: "[::1]:8080", want: "[::1]:8080"},
		{name: "trim host and port", listenAddr: " localhost:9090 ", want: "localhost:9090"},
		{name: "trim port only", listenAddr: "  :7070  ", want: "localhost:7070"},
		{name: "empty falls back", listenAddr: "", want: "localhost:8080"},
		{name: "whitespace falls back", listenAddr: "   ", want: "localhost:8080"},
		{name: "malformed passes through", listenAddr: "localhost", want: "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := curlHostForListenAddr(tt.listenAddr)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExampleURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		listenAddr string
		want       string
	}{
		{listenAddr: ":8080", want: "http://localhost:8080/v1/tables/users?sort=-id"},
		{listenAddr: "0.0.0.0:9000", want: "http://localhost:9000/v1/tables/users?sort=-id"},
		{listenAddr: "[::1]:8080", want: "http://[::1]:8080/v1/tables/users?sort=-id"},
	}

	for _, tt := range tests {
		t.Run(tt.listenAddr, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, exampleURL(tt.listenAddr))
		})
	}
}

// The logged example must be a request the router answers.
func TestExampleURL_ServedByRouter(t *testing.T) {
	t.Parallel()
	a, err := app.New(t.Context(), app.Deps{Cfg: &config.Config{
		DBProvider:         app.ProviderMemory,
		DefaultPerPage:     15,
		MaxPerPage:         100,
		RateLimitRPS:       100,
		RateLimitBurst:     100,
		CORSAllowedOrigins: []string{"*"},
	}})
	require.NoError(t, err)

	u, err := url.Parse(exampleURL(":8080"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Router(t.Context()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"rows"`)
}
