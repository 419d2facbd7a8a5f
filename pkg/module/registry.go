package module

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Sumatoshi-tech/qcreport/pkg/report"
)

// Registry errors.
var (
	ErrDuplicateModule = errors.New("module already registered")
	ErrUnknownModule   = errors.New("unknown module")
)

// ErrNoLogs is returned by a module that found none of its log files.
var ErrNoLogs = errors.New("no log files found")

// Module is one report module bound to a run.
type Module interface {
	Name() string
	Analyze(ctx context.Context) error
}

// Factory binds a module to a run.
type Factory func(run *report.Run) Module

// Registry holds the known modules in registration order.
type Registry struct {
	names     []string
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a module factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
	}

	r.names = append(r.names, name)
	r.factories[name] = factory

	return nil
}

// Names returns the registered module names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// RunAll runs the selected modules, or all of them when names is empty, in
// registration order. A failing module is logged and the others still run;
// the names of the modules that produced output are returned.
func (r *Registry) RunAll(ctx context.Context, run *report.Run, names ...string) ([]string, error) {
	for _, name := range names {
		if _, ok := r.factories[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
		}
	}

	var ran []string

	for _, name := range r.names {
		if len(names) > 0 && !slices.Contains(names, name) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return ran, fmt.Errorf("run modules: %w", err)
		}

		mod := r.factories[name](run)

		err := mod.Analyze(ctx)

		switch {
		case errors.Is(err, ErrNoLogs):
			run.Logger.DebugContext(ctx, "No samples found", slog.String("module", name))
		case err != nil:
			run.Logger.ErrorContext(ctx, "Module failed", slog.String("module", name), slog.String("error", err.Error()))
		default:
			ran = append(ran, name)
		}
	}

	return ran, nil
}
