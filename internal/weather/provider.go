package weather

import "context"

// Provider is the strategy a fetch cycle runs against. One implementation
// exists per upstream family and is selected once from configuration.
type Provider interface {
	Name() string

	// ResolveEndpoints performs whatever lookups are needed before the
	// dataset requests can be issued. An error here ends the cycle.
	ResolveEndpoints(ctx context.Context) (Resolution, error)

	// FetchDataset retrieves the dataset for one planned endpoint.
	FetchDataset(ctx context.Context, ep Endpoint) (Dataset, error)
}

// Emitter receives completed datasets.
type Emitter interface {
	Emit(ctx context.Context, ds Dataset) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ctx context.Context, ds Dataset) error

func (f EmitterFunc) Emit(ctx context.Context, ds Dataset) error {
	return f(ctx, ds)
}
