// Package provider declares the data-provider collaborators the chart
// services load from, and wraps them in circuit breakers.
package provider

import (
	"context"

	"github.com/ehr/trialviz/internal/population"
)

// EventLoader loads the domain entities of the given datasets, every
// dataset when the list is empty.
type EventLoader[E any] interface {
	LoadEvents(ctx context.Context, datasets []string) ([]E, error)
}

// PopulationLoader loads the subjects of the given datasets.
type PopulationLoader interface {
	LoadPopulation(ctx context.Context, datasets []string) ([]*population.Subject, error)
}

// EventLoaderFunc adapts a function to EventLoader.
type EventLoaderFunc[E any] func(ctx context.Context, datasets []string) ([]E, error)

func (f EventLoaderFunc[E]) LoadEvents(ctx context.Context, datasets []string) ([]E, error) {
	return f(ctx, datasets)
}

// PopulationLoaderFunc adapts a function to PopulationLoader.
type PopulationLoaderFunc func(ctx context.Context, datasets []string) ([]*population.Subject, error)

func (f PopulationLoaderFunc) LoadPopulation(ctx context.Context, datasets []string) ([]*population.Subject, error) {
	return f(ctx, datasets)
}
