package homepage_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/advdv/bcapture/app/apptest"
	"github.com/advdv/bcapture/internal/homepage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	rec := apptest.CallHandler(homepage.Handle, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Example page</title>")
	assert.Contains(t, body, "pinco[DOT]pallino[AT]univaq[DOT]it")
	assert.Contains(t, body, "pinco[DOT]pallino[AT]di[DOT]univaq[DOT]it")
	assert.Contains(t, body, "pincopallino[AT]a[DOT]b[DOT]c[DOT]d[DOT]com")
	assert.Contains(t, body, "<p>This text @.,.,. is not modified!.</p>")
	assert.NotContains(t, body, "@univaq")

	assert.Equal(t, strconv.Itoa(len(body)), rec.Header().Get("Content-Length"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHandleFilterOff(t *testing.T) {
	rec := apptest.CallHandler(homepage.Handle, httptest.NewRequest(http.MethodGet, "/?filter=off", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pinco.pallino@univaq.it")
}
