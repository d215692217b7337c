package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ehr/trialviz/internal/chart"
	"github.com/ehr/trialviz/internal/config"
	"github.com/ehr/trialviz/internal/domain/adverseevent"
	"github.com/ehr/trialviz/internal/domain/exposure"
	"github.com/ehr/trialviz/internal/domain/lab"
	"github.com/ehr/trialviz/internal/domain/tumour"
	"github.com/ehr/trialviz/internal/domain/vital"
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/platform/db"
	"github.com/ehr/trialviz/internal/platform/store"
	"github.com/ehr/trialviz/internal/population"
	"github.com/ehr/trialviz/internal/provider"
	"github.com/ehr/trialviz/internal/provider/fixture"
)

// dataSource is the configured backend: a SQL querier (postgres or sqlite)
// or a fixture snapshot.
type dataSource struct {
	kind    string
	q       store.Querier
	pool    *pgxpool.Pool
	fixture *fixture.Source
}

func openSource(ctx context.Context, cfg *config.Config) (*dataSource, error) {
	switch cfg.DataSource {
	case config.SourcePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		return &dataSource{kind: cfg.DataSource, q: store.NewPostgres(pool), pool: pool}, nil
	case config.SourceSQLite:
		q, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &dataSource{kind: cfg.DataSource, q: q}, nil
	case config.SourceFixture:
		src, err := fixture.Open(ctx, cfg.FixtureURI, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return &dataSource{kind: cfg.DataSource, fixture: src}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

func (s *dataSource) Ping(ctx context.Context) error {
	if s.fixture != nil {
		return s.fixture.Ping(ctx)
	}
	return s.q.Ping(ctx)
}

func (s *dataSource) Close() {
	if s.q != nil {
		s.q.Close()
	}
}

func (s *dataSource) population() provider.PopulationLoader {
	if s.fixture != nil {
		return s.fixture
	}
	return population.NewRepo(s.q)
}

func events[E engine.Entity](s *dataSource, domain string, repo func(store.Querier) provider.EventLoader[E]) provider.EventLoader[E] {
	if s.fixture != nil {
		return fixture.NewEvents[E](s.fixture, domain)
	}
	return repo(s.q)
}

func breakerConfig(cfg *config.Config) provider.BreakerConfig {
	bc := provider.DefaultBreakerConfig()
	bc.MaxFailures = cfg.BreakerMaxFailures
	bc.OpenTimeout = cfg.BreakerOpenTimeout
	return bc
}

func service[E engine.Entity](d *chart.Domain[E], loader provider.EventLoader[E], subjects provider.PopulationLoader,
	bc provider.BreakerConfig, logger zerolog.Logger, rec chart.Recorder) chart.DomainService {
	guarded := provider.GuardEvents(loader, provider.NewBreaker(d.Name, bc, logger))
	return chart.NewService(d, guarded, subjects, logger, rec)
}

// buildServices composes every trial domain over the data source. Each
// loader gets its own breaker; the population loader is shared.
func buildServices(cfg *config.Config, src *dataSource, logger zerolog.Logger, rec chart.Recorder) []chart.DomainService {
	bc := breakerConfig(cfg)
	subjects := provider.GuardPopulation(src.population(), provider.NewBreaker("population", bc, logger))

	return []chart.DomainService{
		service(adverseevent.NewDomain(),
			events(src, adverseevent.Name, func(q store.Querier) provider.EventLoader[*adverseevent.AdverseEvent] {
				return adverseevent.NewRepo(q)
			}), subjects, bc, logger, rec),
		service(lab.NewDomain(),
			events(src, lab.Name, func(q store.Querier) provider.EventLoader[*lab.Result] {
				return lab.NewRepo(q)
			}), subjects, bc, logger, rec),
		service(vital.NewDomain(),
			events(src, vital.Name, func(q store.Querier) provider.EventLoader[*vital.Sign] {
				return vital.NewRepo(q)
			}), subjects, bc, logger, rec),
		service(tumour.NewDomain(),
			events(src, tumour.Name, func(q store.Querier) provider.EventLoader[*tumour.Assessment] {
				return tumour.NewRepo(q)
			}), subjects, bc, logger, rec),
		service(exposure.NewDomain(),
			events(src, exposure.Name, func(q store.Querier) provider.EventLoader[*exposure.Sample] {
				return exposure.NewRepo(q)
			}), subjects, bc, logger, rec),
	}
}
