package apptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [app.Environment] env vars via t.Setenv.
// Create one with [SetEnv].
type Env struct {
	t testing.TB
}

// SetEnv sets the env vars of [app.Environment] to test defaults. Port is required because
// each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BC_SERVICE_NAME: "test"
//   - BC_OTEL_EXPORTER: "none"
//   - BC_STATIC_DIR: "testdata"
//   - BC_STATIC_BUCKET: ""
//
// Use the returned [Env] to override individual values:
//
//	apptest.SetEnv(t, 18085).StaticDir("public").Tokens(" at ", " dot ")
func SetEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BC_PORT", strconv.Itoa(port))
	t.Setenv("BC_SERVICE_NAME", "test")
	t.Setenv("BC_OTEL_EXPORTER", "none")
	t.Setenv("BC_STATIC_DIR", "testdata")
	t.Setenv("BC_STATIC_BUCKET", "")
	return &Env{t: t}
}

// ServiceName overrides BC_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_SERVICE_NAME", name)
	return e
}

// HealthPath overrides BC_HEALTH_PATH.
func (e *Env) HealthPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_HEALTH_PATH", path)
	return e
}

// StaticDir overrides BC_STATIC_DIR.
func (e *Env) StaticDir(dir string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_STATIC_DIR", dir)
	return e
}

// StaticPattern overrides BC_STATIC_PATTERN.
func (e *Env) StaticPattern(pattern string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_STATIC_PATTERN", pattern)
	return e
}

// Tokens overrides BC_AT_TOKEN and BC_DOT_TOKEN.
func (e *Env) Tokens(at, dot string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_AT_TOKEN", at)
	e.t.Setenv("BC_DOT_TOKEN", dot)
	return e
}

// BufferLimit overrides BC_BUFFER_LIMIT.
func (e *Env) BufferLimit(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BC_BUFFER_LIMIT", strconv.Itoa(n))
	return e
}
