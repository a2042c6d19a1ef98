package app

import (
	"context"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/advdv/bcapture"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// IndexFile is served for paths that end in a slash.
const IndexFile = "index.html"

// Object is an opened static resource.
type Object struct {
	io.ReadCloser
	// Size is the size in bytes, or -1 when unknown.
	Size int64
	// ContentType as stored with the object, may be empty.
	ContentType string
}

// Source opens static resources by their slash-separated name. A missing resource is reported
// as a [bcapture.CodeNotFound] error.
type Source interface {
	Open(ctx context.Context, name string) (*Object, error)
}

// DirSource serves static resources from a file system.
type DirSource struct{ fsys fs.FS }

// NewDirSource inits a source that reads from fsys.
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Open implements [Source].
func (s *DirSource) Open(_ context.Context, name string) (*Object, error) {
	f, err := s.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, bcapture.NewError(bcapture.CodeNotFound, errors.Wrapf(err, "open %q", name))
	} else if err != nil {
		return nil, errors.Wrapf(err, "open %q", name)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "stat %q", name)
	}

	if fi.IsDir() {
		_ = f.Close()
		return nil, bcapture.NewError(bcapture.CodeNotFound, errors.Newf("%q is a directory", name))
	}

	return &Object{ReadCloser: f, Size: fi.Size()}, nil
}

// StaticHandler serves resources from src through the binary channel. Whether the output is
// transformed is decided by the controller, based on the request path.
func StaticHandler(src Source) bcapture.HandlerFunc {
	return func(ctx context.Context, w bcapture.ResponseWriter, r *http.Request) error {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || strings.HasSuffix(name, "/") {
			name += IndexFile
		}

		if !fs.ValidPath(name) {
			return bcapture.NewError(bcapture.CodeNotFound, errors.Newf("invalid path %q", r.URL.Path))
		}

		obj, err := src.Open(ctx, name)
		if err != nil {
			return err
		}
		defer obj.Close()

		ctype := obj.ContentType
		if ctype == "" {
			ctype = mime.TypeByExtension(path.Ext(name))
		}

		if ctype != "" {
			w.Header().Set("Content-Type", ctype)
		}

		if obj.Size >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}

		bw, err := w.Binary()
		if err != nil {
			return err
		}

		if _, err := io.Copy(bw, obj); err != nil {
			return errors.Wrapf(err, "copy %q", name)
		}

		Log(ctx).Debug("served static resource", zap.String("name", name))

		return nil
	}
}
