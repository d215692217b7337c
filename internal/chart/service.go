package chart

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
	"github.com/ehr/trialviz/internal/provider"
	"github.com/ehr/trialviz/pkg/pagination"
)

// Recorder receives engine timings and filtered sizes.
type Recorder interface {
	ObserveChart(domain string, family engine.Family, d time.Duration)
	ObserveFiltered(domain string, events, subjects int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveChart(string, engine.Family, time.Duration) {}
func (nopRecorder) ObserveFiltered(string, int, int)                  {}

// DomainService is the type-erased view of a Service used by the HTTP
// layer and the metadata builder.
type DomainService interface {
	Name() string
	Families() []engine.Family
	Chart(ctx context.Context, req ChartRequest) ([]engine.TrellisedChart, error)
	Selection(ctx context.Context, req SelectionRequest) (engine.SelectionDetail, error)
	Options(ctx context.Context, req Request) (Options, error)
	AvailableFilters(ctx context.Context, req Request) (FilterOptions, error)
	Details(ctx context.Context, req DetailsRequest) (*pagination.Response, error)
	Metadata(ctx context.Context, datasets []string) (*Metadata, error)
}

// Service runs the engine for one domain.
type Service[E engine.Entity] struct {
	domain   *Domain[E]
	events   provider.EventLoader[E]
	subjects provider.PopulationLoader
	logger   zerolog.Logger
	metrics  Recorder
}

// NewService composes a domain with its loaders. A nil recorder disables
// metrics.
func NewService[E engine.Entity](d *Domain[E], events provider.EventLoader[E], subjects provider.PopulationLoader, logger zerolog.Logger, metrics Recorder) *Service[E] {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service[E]{
		domain:   d,
		events:   events,
		subjects: subjects,
		logger:   logger.With().Str("domain", d.Name).Logger(),
		metrics:  metrics,
	}
}

func (s *Service[E]) Name() string { return s.domain.Name }

func (s *Service[E]) Families() []engine.Family {
	return append([]engine.Family(nil), s.domain.Families...)
}

// load fetches entities and subjects concurrently, links every entity to
// its subject and runs the domain pre-pass.
func (s *Service[E]) load(ctx context.Context, datasets []string) ([]E, []*population.Subject, error) {
	var (
		events   []E
		subjects []*population.Subject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.events.LoadEvents(gctx, datasets)
		if err != nil {
			return fmt.Errorf("load %s: %w", s.domain.Name, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		subjects, err = s.subjects.LoadPopulation(gctx, datasets)
		if err != nil {
			return fmt.Errorf("load population: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	index := population.Index(subjects)
	linked := make([]E, 0, len(events))
	orphans := 0
	for _, e := range events {
		sub, ok := index[e.SubjectID()]
		if !ok {
			orphans++
			continue
		}
		if s.domain.Attach != nil {
			s.domain.Attach(e, sub)
		}
		linked = append(linked, e)
	}
	if orphans > 0 {
		s.logger.Warn().Int("orphans", orphans).Msg("dropped entities without a subject")
	}
	if s.domain.Prepass != nil {
		linked = s.domain.Prepass(linked)
	}
	return linked, subjects, nil
}

func (s *Service[E]) filter(ctx context.Context, req Request) (*engine.FilterResult[E, *population.Subject], error) {
	events, subjects, err := s.load(ctx, req.Datasets)
	if err != nil {
		return nil, err
	}
	res, err := engine.ApplyFilters(events, subjects, s.domain.Attributes, population.Attributes, req.EventFilters, req.PopulationFilters)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveFiltered(s.domain.Name, res.TotalEvents(), res.TotalSubjects())
	return res, nil
}

// Chart computes the trellised chart of one family. Empty filtered data
// yields an empty list.
func (s *Service[E]) Chart(ctx context.Context, req ChartRequest) ([]engine.TrellisedChart, error) {
	if !s.domain.Supports(req.Family) {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedFamily, req.Family, s.domain.Name)
	}
	start := time.Now()
	res, err := s.filter(ctx, req.Request)
	if err != nil {
		return nil, err
	}
	c, err := s.compute(req, res)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveChart(s.domain.Name, req.Family, time.Since(start))
	return c.charts, nil
}

// Selection re-runs the chart and collects the members of the selected
// cells.
func (s *Service[E]) Selection(ctx context.Context, req SelectionRequest) (engine.SelectionDetail, error) {
	if !s.domain.Supports(req.Family) {
		return engine.SelectionDetail{}, fmt.Errorf("%w: %s on %s", ErrUnsupportedFamily, req.Family, s.domain.Name)
	}
	res, err := s.filter(ctx, req.Request)
	if err != nil {
		return engine.SelectionDetail{}, err
	}
	c, err := s.compute(req.ChartRequest, res)
	if err != nil {
		return engine.SelectionDetail{}, err
	}
	return c.selectKeys(req.Items, res.Totals()), nil
}

// Options discovers the picker choices over the filtered entities.
func (s *Service[E]) Options(ctx context.Context, req Request) (Options, error) {
	res, err := s.filter(ctx, req)
	if err != nil {
		return Options{}, err
	}
	return s.discover(res.Filtered, req.Settings)
}

func (s *Service[E]) discover(items []E, settings engine.Settings) (Options, error) {
	c := s.domain.Candidates
	actx := engine.NewContext()
	needed := s.domain.contextsOf(c.XAxis, c.Trellis, c.ColorBy, c.SeriesBy)
	if err := engine.ResolveContexts(items, s.domain.Attributes, s.domain.Resolvers, settings, actx, needed...); err != nil {
		return Options{}, err
	}
	out := emptyOptions()
	for _, p := range []struct {
		dst   *[]engine.Option
		names []string
	}{
		{&out.XAxis, c.XAxis},
		{&out.Trellis, c.Trellis},
		{&out.ColorBy, c.ColorBy},
		{&out.SeriesBy, c.SeriesBy},
	} {
		opts, err := engine.DiscoverOptions(items, s.domain.Attributes, p.names, actx)
		if err != nil {
			return Options{}, err
		}
		*p.dst = opts
	}
	return out, nil
}

// AvailableFilters summarises every filter dimension. Event dimensions are
// computed over the entities of subjects passing the population filters.
func (s *Service[E]) AvailableFilters(ctx context.Context, req Request) (FilterOptions, error) {
	events, subjects, err := s.load(ctx, req.Datasets)
	if err != nil {
		return FilterOptions{}, err
	}
	pop, err := engine.FilterPopulation(subjects, population.Attributes, req.PopulationFilters)
	if err != nil {
		return FilterOptions{}, err
	}
	inPopulation := make([]E, 0, len(events))
	for _, e := range events {
		if pop.Contains(e.SubjectID()) {
			inPopulation = append(inPopulation, e)
		}
	}
	ev, err := engine.AvailableFilters(inPopulation, s.domain.Attributes, s.domain.FilterSpecs, req.EventFilters)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("event %w", err)
	}
	ps, err := engine.AvailableFilters(subjects, population.Attributes, population.FilterSpecs, req.PopulationFilters)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("population %w", err)
	}
	return FilterOptions{Events: ev, Population: ps}, nil
}

// Details pages through the rows of the requested events that are still
// in the filtered set, ordered by id.
func (s *Service[E]) Details(ctx context.Context, req DetailsRequest) (*pagination.Response, error) {
	res, err := s.filter(ctx, req.Request)
	if err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(req.EventIDs))
	for _, id := range req.EventIDs {
		want[id] = struct{}{}
	}
	matched := make([]E, 0, len(req.EventIDs))
	for _, e := range res.Filtered {
		if _, ok := want[e.ID()]; ok {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID() < matched[j].ID() })

	pg := pagination.New(req.Limit, req.Offset)
	lo, hi := pg.Window(len(matched))
	rows := make([]any, 0, hi-lo)
	for _, e := range matched[lo:hi] {
		if s.domain.Row != nil {
			rows = append(rows, s.domain.Row(e))
		} else {
			rows = append(rows, e)
		}
	}
	return pagination.NewResponse(rows, len(matched), pg), nil
}

// Metadata counts the domain's entities and subjects with data, unfiltered,
// and lists the picker options.
func (s *Service[E]) Metadata(ctx context.Context, datasets []string) (*Metadata, error) {
	events, _, err := s.load(ctx, datasets)
	if err != nil {
		return nil, err
	}
	opts, err := s.discover(events, engine.Settings{})
	if err != nil {
		return nil, err
	}
	subjects := make(map[string]struct{})
	for _, e := range events {
		subjects[e.SubjectID()] = struct{}{}
	}
	return &Metadata{
		Domain:   s.domain.Name,
		Events:   len(events),
		Subjects: len(subjects),
		Families: s.Families(),
		Options:  opts,
	}, nil
}
