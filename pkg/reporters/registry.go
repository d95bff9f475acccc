package reporters

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Reporter from a config entry.
type Builder func(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error)

// Registry maps reporter types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	ReporterFor(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a reporter type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// ReporterFor returns the reporter built for the provided config.
func (r *registry) ReporterFor(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("reporter %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no reporter registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up known reporters.
func DefaultRegistry() Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:   newHTTPReporter,
		TypeSQS:    newSQSReporter,
		TypeSNS:    newSNSReporter,
		TypePubSub: newPubSubReporter,
	})
}

// BuildAll instantiates reporters for configs using the registry.
func BuildAll(ctx context.Context, reg Registry, cfgs []ReporterConfig, log Logger) ([]Reporter, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var reps []Reporter
	for _, cfg := range cfgs {
		rep, err := reg.ReporterFor(ctx, cfg, log)
		if err != nil {
			// Release clients held by reporters built so far.
			_ = NewFanout(reps).Close()
			return nil, fmt.Errorf("build reporter %q: %w", cfg.ID, err)
		}
		reps = append(reps, rep)
	}
	return reps, nil
}
