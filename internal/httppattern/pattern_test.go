package httppattern_test

import (
	"testing"

	"github.com/advdv/bcapture/internal/httppattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndBuild(t *testing.T) {
	for _, tt := range []struct {
		pattern string
		vals    []string
		method  string
		host    string
		expect  string
	}{
		{"/", nil, "", "", "/"},
		{"/{$}", nil, "", "", "/"},
		{"GET /index.html", nil, "GET", "", "/index.html"},
		{"GET /blog/{id}/{$}", []string{"foo"}, "GET", "", "/blog/foo/"},
		{"example.com/pages/{name}", []string{"a b"}, "", "example.com", "/pages/a%20b"},
		{"GET /static/{path...}", []string{"/docs/about.html"}, "GET", "", "/static/docs/about.html"},
	} {
		t.Run(tt.pattern, func(t *testing.T) {
			pat, err := httppattern.ParsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.method, pat.Method())
			assert.Equal(t, tt.host, pat.Host())

			res, err := httppattern.Build(pat, tt.vals...)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, res)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"GET",
		"/a/{b",
		"/a/{}",
		"/{a}/{a}",
		"/{$}/more",
		"/{rest...}/more",
	} {
		_, err := httppattern.ParsePattern(s)
		require.Error(t, err, s)
	}
}

func TestBuildValueCount(t *testing.T) {
	pat, err := httppattern.ParsePattern("/blog/{id}")
	require.NoError(t, err)

	_, err = httppattern.Build(pat)
	require.ErrorContains(t, err, "not enough values")

	_, err = httppattern.Build(pat, "a", "b")
	require.ErrorContains(t, err, "too many values")
}
