package bcapture

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

// DefaultStaticPattern matches request paths of static html pages.
const DefaultStaticPattern = `\.html$`

// Classifier decides whether a request path targets a static textual resource. Matching is
// case-sensitive: "/REPORT.HTML" is not static with the default pattern.
type Classifier struct {
	pat *regexp.Regexp
}

// NewClassifier compiles pattern into a classifier. A path is static when the pattern
// matches anywhere in it.
func NewClassifier(pattern string) (*Classifier, error) {
	pat, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "compile static resource pattern %q", pattern)
	}

	return &Classifier{pat: pat}, nil
}

// DefaultClassifier classifies paths ending in ".html" as static.
func DefaultClassifier() *Classifier {
	return &Classifier{pat: regexp.MustCompile(DefaultStaticPattern)}
}

// Classify reports whether path is a static textual resource.
func (c *Classifier) Classify(path string) bool {
	return c.pat.MatchString(path)
}

// String returns the pattern of the classifier.
func (c *Classifier) String() string { return c.pat.String() }
