package app

import (
	"github.com/advdv/bcapture"
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment holds the configuration of a bcapture server, read from environment variables
// once at startup.
type Environment struct {
	Port         int           `env:"BC_PORT" envDefault:"8080"`
	ServiceName  string        `env:"BC_SERVICE_NAME,required,notEmpty"`
	HealthPath   string        `env:"BC_HEALTH_PATH" envDefault:"/health"`
	LogLevel     zapcore.Level `env:"BC_LOG_LEVEL" envDefault:"info"`
	OtelExporter string        `env:"BC_OTEL_EXPORTER" envDefault:"stdout"`

	// StaticPattern is matched against request paths to find static resources.
	StaticPattern  string `env:"BC_STATIC_PATTERN" envDefault:"\\.html$"`
	AtToken        string `env:"BC_AT_TOKEN" envDefault:"[AT]"`
	DotToken       string `env:"BC_DOT_TOKEN" envDefault:"[DOT]"`
	DefaultCharset string `env:"BC_DEFAULT_CHARSET" envDefault:"utf-8"`
	BufferLimit    int    `env:"BC_BUFFER_LIMIT" envDefault:"-1"`

	// StaticDir is served when no StaticBucket is configured.
	StaticDir    string `env:"BC_STATIC_DIR" envDefault:"static"`
	StaticBucket string `env:"BC_STATIC_BUCKET"`
	StaticPrefix string `env:"BC_STATIC_PREFIX"`
	AWSRegion    string `env:"AWS_REGION"`
}

// ParseEnv parses environment variables into an [Environment].
func ParseEnv() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return e, errors.Wrap(err, "failed to parse environment")
	}

	return e, nil
}

// ControllerConfig turns the environment into the configuration of a [bcapture.Controller].
func (e Environment) ControllerConfig(logs bcapture.Logger) (bcapture.ControllerConfig, error) {
	cls, err := bcapture.NewClassifier(e.StaticPattern)
	if err != nil {
		return bcapture.ControllerConfig{}, errors.Wrap(err, "BC_STATIC_PATTERN")
	}

	cs, err := bcapture.LookupCharset(e.DefaultCharset)
	if err != nil {
		return bcapture.ControllerConfig{}, errors.Wrap(err, "BC_DEFAULT_CHARSET")
	}

	return bcapture.ControllerConfig{
		Classifier: cls,
		Pipeline:   bcapture.Pipeline{bcapture.NewEmailObfuscator(e.AtToken, e.DotToken).Rule()},
		Charset:    cs,
		BufLimit:   e.BufferLimit,
		Logger:     logs,
	}, nil
}
