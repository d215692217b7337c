// Package chart turns the engine into per-domain chart services and serves
// them over HTTP.
package chart

import (
	"errors"
	"slices"

	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

var (
	ErrUnsupportedFamily = errors.New("unsupported chart family")
	ErrInvalidSettings   = errors.New("invalid chart settings")
	ErrUnknownDomain     = errors.New("unknown domain")
)

// Candidates are the attributes a domain offers in each picker.
type Candidates struct {
	XAxis    []string
	Trellis  []string
	ColorBy  []string
	SeriesBy []string
}

// ShiftDefaults names the attributes a shift chart falls back to.
type ShiftDefaults struct {
	Timepoint string
	Category  string
}

// Domain describes one entity type to the generic service. E is normally a
// pointer so that Attach can link the subject in place.
type Domain[E engine.Entity] struct {
	Name        string
	Attributes  *engine.Attributes[E]
	Resolvers   map[string]engine.Resolver[E]
	FilterSpecs []engine.FilterSpec
	Candidates  Candidates
	Families    []engine.Family
	// Prepass reshapes the loaded entities before filtering.
	Prepass engine.Prepass[E]
	// Attach links an entity to its subject after loading.
	Attach func(E, *population.Subject)
	// Row projects an entity into a details-on-demand row.
	Row   func(E) any
	Shift ShiftDefaults
}

// Supports reports whether family is enabled for the domain.
func (d *Domain[E]) Supports(f engine.Family) bool {
	return slices.Contains(d.Families, f)
}

// contextsOf returns the context names required by the named attributes.
func (d *Domain[E]) contextsOf(names ...[]string) []string {
	var out []string
	for _, list := range names {
		for _, n := range list {
			a, err := d.Attributes.Get(n)
			if err != nil || a.RequiredContext() == "" {
				continue
			}
			if !slices.Contains(out, a.RequiredContext()) {
				out = append(out, a.RequiredContext())
			}
		}
	}
	return out
}
