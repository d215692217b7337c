package chart

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/trialviz/internal/engine"
)

// MetadataBuilder builds the metadata of every domain concurrently. A domain
// that fails or panics is reported as a degraded item instead of failing the
// whole response.
type MetadataBuilder struct {
	registry *Registry
	logger   zerolog.Logger
	limit    int
}

// NewMetadataBuilder runs at most limit domains at once; limit <= 0 means no
// limit.
func NewMetadataBuilder(registry *Registry, logger zerolog.Logger, limit int) *MetadataBuilder {
	return &MetadataBuilder{registry: registry, logger: logger, limit: limit}
}

// Build returns one item per domain, in domain name order.
func (b *MetadataBuilder) Build(ctx context.Context, datasets []string) []Metadata {
	services := b.registry.All()
	out := make([]Metadata, len(services))
	var g errgroup.Group
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for i, svc := range services {
		i, svc := i, svc
		g.Go(func() error {
			out[i] = b.buildOne(ctx, svc, datasets)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (b *MetadataBuilder) buildOne(ctx context.Context, svc DomainService, datasets []string) (m Metadata) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			b.logger.Error().Str("domain", svc.Name()).Err(err).Msg("metadata build panicked")
			m = degraded(svc, err)
		}
	}()
	md, err := svc.Metadata(ctx, datasets)
	if err != nil {
		b.logger.Warn().Str("domain", svc.Name()).Err(err).Msg("metadata build failed")
		return degraded(svc, err)
	}
	return *md
}

func degraded(svc DomainService, err error) Metadata {
	return Metadata{
		Domain:   svc.Name(),
		Error:    err.Error(),
		Families: []engine.Family{},
		Options:  emptyOptions(),
	}
}
