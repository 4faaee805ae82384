package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// GormTracingConfig controls the otelgorm plugin.
type GormTracingConfig struct {
	// DBSystem is reported as db.name on every span
	DBSystem string
	// WithVariables includes bound parameters in db.statement. Leave off outside development.
	WithVariables bool
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// InstrumentGorm registers otelgorm so statements run in child spans of the caller's context.
// Repositories already pass the request context through WithContext.
func InstrumentGorm(db *gorm.DB, cfg GormTracingConfig) error {
	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBSystem),
		otelgorm.WithoutMetrics(),
	}
	if !cfg.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}
	return nil
}
