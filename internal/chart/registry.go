package chart

import (
	"fmt"
	"sort"
)

// Registry holds the domain services by name.
type Registry struct {
	byName map[string]DomainService
}

func NewRegistry(services ...DomainService) *Registry {
	r := &Registry{byName: make(map[string]DomainService, len(services))}
	for _, svc := range services {
		if _, dup := r.byName[svc.Name()]; dup {
			panic(fmt.Sprintf("chart: duplicate domain %q", svc.Name()))
		}
		r.byName[svc.Name()] = svc
	}
	return r
}

// Get returns the named service or ErrUnknownDomain.
func (r *Registry) Get(name string) (DomainService, error) {
	svc, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, name)
	}
	return svc, nil
}

// All returns the services sorted by name.
func (r *Registry) All() []DomainService {
	out := make([]DomainService, 0, len(r.byName))
	for _, svc := range r.byName {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
