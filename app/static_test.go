package app_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/advdv/bcapture"
	"github.com/advdv/bcapture/app"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR info@example.org")

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":      {Data: []byte("<p>Write to info@example.org</p>")},
		"docs/notes.txt":  {Data: []byte("contact: info@example.org")},
		"docs/index.html": {Data: []byte("<p>docs@example.org</p>")},
		"img/logo.png":    {Data: pngBytes},
	}
}

func serveStatic(t *testing.T, src app.Source, target string) *httptest.ResponseRecorder {
	t.Helper()

	mux := bcapture.NewServeMuxWith(
		bcapture.NewController(bcapture.ControllerConfig{Logger: bcapture.NewTestLogger(t)}),
		http.NewServeMux(), bcapture.NewReverser())
	mux.HandleFunc("GET /", app.StaticHandler(src))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestStaticHandlerDir(t *testing.T) {
	src := app.NewDirSource(testFS())

	t.Run("html is transformed", func(t *testing.T) {
		rec := serveStatic(t, src, "/index.html")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<p>Write to info[AT]example[DOT]org</p>", rec.Body.String())
		assert.Equal(t, "39", rec.Header().Get("Content-Length"))
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("index of directory", func(t *testing.T) {
		rec := serveStatic(t, src, "/docs/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<p>docs@example.org</p>", rec.Body.String(), "the request path is not static")
	})

	t.Run("non static path streams verbatim", func(t *testing.T) {
		rec := serveStatic(t, src, "/docs/notes.txt")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "contact: info@example.org", rec.Body.String())
		assert.Equal(t, "25", rec.Header().Get("Content-Length"))
	})

	t.Run("image", func(t *testing.T) {
		rec := serveStatic(t, src, "/img/logo.png")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pngBytes, rec.Body.Bytes())
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	})

	t.Run("not found", func(t *testing.T) {
		rec := serveStatic(t, src, "/missing.html")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found\n", rec.Body.String())
	})

	t.Run("directory", func(t *testing.T) {
		rec := serveStatic(t, src, "/docs")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

type fakeS3 struct {
	objects map[string]string
	keys    []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, aws.ToString(in.Bucket)+"/"+key)

	data, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("text/html"),
	}, nil
}

func TestStaticHandlerS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"site/about.html": "<p>about@example.org</p>",
	}}
	src := app.NewS3Source(client, "my-bucket", "site")

	rec := serveStatic(t, src, "/about.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>about[AT]example[DOT]org</p>", rec.Body.String())
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))

	rec = serveStatic(t, src, "/gone.html")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{"my-bucket/site/about.html", "my-bucket/site/gone.html"}, client.keys)
}

type failingGetter struct{}

func (failingGetter) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("access denied")
}

func TestS3SourceError(t *testing.T) {
	_, err := app.NewS3Source(failingGetter{}, "b", "").Open(t.Context(), "x.html")
	require.ErrorContains(t, err, "get s3://b/x.html")
	assert.Equal(t, bcapture.CodeUnknown, bcapture.CodeOf(err))

	rec := serveStatic(t, app.NewS3Source(failingGetter{}, "b", ""), "/x.html")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
