// Package httppattern parses standard library route patterns ("GET /items/{id}") so that
// URLs can be built from them.
package httppattern

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

type segment struct {
	lit   string
	name  string
	multi bool
	end   bool
}

func (s segment) wild() bool { return s.name != "" }

// Pattern is a parsed route pattern.
type Pattern struct {
	str      string
	method   string
	host     string
	segments []segment
}

// Method returns the method of the pattern, or an empty string if it matches any method.
func (p *Pattern) Method() string { return p.method }

// Host returns the host of the pattern, if any.
func (p *Pattern) Host() string { return p.host }

// String returns the pattern as it was parsed.
func (p *Pattern) String() string { return p.str }

// NumWildcards returns how many values are needed to build the pattern.
func (p *Pattern) NumWildcards() (n int) {
	for _, s := range p.segments {
		if s.wild() {
			n++
		}
	}

	return n
}

// ParsePattern parses s following the rules of http.ServeMux.
func ParsePattern(s string) (*Pattern, error) {
	if s == "" {
		return nil, errors.New("empty pattern")
	}

	p := &Pattern{str: s}
	rest := s

	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		p.method, rest = rest[:i], strings.TrimLeft(rest[i+1:], " \t")
	}

	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return nil, errors.Newf("host/path missing /: %q", s)
	}

	p.host, rest = rest[:i], rest[i+1:]

	seen := map[string]bool{}
	for raw := range strings.SplitSeq(rest, "/") {
		if len(p.segments) > 0 && (p.segments[len(p.segments)-1].end || p.segments[len(p.segments)-1].multi) {
			return nil, errors.Newf("wildcard must be the last segment: %q", s)
		}

		if !strings.HasPrefix(raw, "{") {
			if strings.ContainsAny(raw, "{}") {
				return nil, errors.Newf("bad wildcard segment %q in %q", raw, s)
			}

			p.segments = append(p.segments, segment{lit: raw})

			continue
		}

		if !strings.HasSuffix(raw, "}") {
			return nil, errors.Newf("bad wildcard segment %q in %q", raw, s)
		}

		name := raw[1 : len(raw)-1]
		if name == "$" {
			p.segments = append(p.segments, segment{end: true})
			continue
		}

		seg := segment{name: name}
		if n, ok := strings.CutSuffix(name, "..."); ok {
			seg.name, seg.multi = n, true
		}

		if seg.name == "" || seen[seg.name] {
			return nil, errors.Newf("bad or duplicate wildcard name %q in %q", name, s)
		}

		seen[seg.name] = true
		p.segments = append(p.segments, seg)
	}

	return p, nil
}

// Build substitutes vals for the wildcards of p, in order, and returns the path.
func Build(p *Pattern, vals ...string) (string, error) {
	if want := p.NumWildcards(); len(vals) != want {
		if len(vals) < want {
			return "", errors.Newf("not enough values: pattern %q needs %d, got %d", p.str, want, len(vals))
		}

		return "", errors.Newf("too many values: pattern %q needs %d, got %d", p.str, want, len(vals))
	}

	parts := make([]string, 0, len(p.segments))
	for _, s := range p.segments {
		switch {
		case s.end:
			parts = append(parts, "")
		case s.multi:
			parts = append(parts, escapeMulti(strings.TrimPrefix(vals[0], "/")))
			vals = vals[1:]
		case s.wild():
			parts = append(parts, url.PathEscape(vals[0]))
			vals = vals[1:]
		default:
			parts = append(parts, s.lit)
		}
	}

	return "/" + strings.Join(parts, "/"), nil
}

func escapeMulti(v string) string {
	segs := strings.Split(v, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}

	return strings.Join(segs, "/")
}
