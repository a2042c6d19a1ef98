package app

import (
	"context"
	"net/http"
	"os"

	"github.com/advdv/bcapture"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Mux is an alias for bcapture.ServeMux.
type Mux = bcapture.ServeMux

// NewController creates the controller every route of the [Mux] is processed by. Events are
// logged to logs and counted by m.
func NewController(env Environment, logs *zap.Logger, m *Metrics) (*bcapture.Controller, error) {
	cfg, err := env.ControllerConfig(m.Logger(newZapCaptureLogger(logs)))
	if err != nil {
		return nil, err
	}

	return bcapture.NewController(cfg), nil
}

// NewMux creates a new Mux whose routes run through ctrl.
func NewMux(ctrl *bcapture.Controller) *Mux {
	return bcapture.NewServeMuxWith(ctrl, http.NewServeMux(), bcapture.NewReverser())
}

// NewSource serves static resources from BC_STATIC_BUCKET when it is set, and from the
// BC_STATIC_DIR directory otherwise.
func NewSource(env Environment, tp trace.TracerProvider, prop propagation.TextMapPropagator, logs *zap.Logger) (Source, error) {
	if env.StaticBucket == "" {
		logs.Info("serving static resources from directory", zap.String("dir", env.StaticDir))
		return NewDirSource(os.DirFS(env.StaticDir)), nil
	}

	cfg, err := NewAWSConfig(context.Background(), tp, prop)
	if err != nil {
		return nil, err
	}

	if env.AWSRegion != "" {
		cfg.Region = env.AWSRegion
	}

	logs.Info("serving static resources from bucket",
		zap.String("bucket", env.StaticBucket),
		zap.String("prefix", env.StaticPrefix))

	return NewS3Source(s3.NewFromConfig(cfg), env.StaticBucket, env.StaticPrefix), nil
}
