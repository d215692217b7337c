// Package fixture serves trial data from a YAML snapshot stored on disk or
// in S3. Snapshots list subjects plus one entity list per domain:
//
//	subjects:
//	  - usubjid: S-001
//	    datasetId: ds1
//	domains:
//	  adverse-events:
//	    - id: AE-1
//	      usubjid: S-001
package fixture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

// ErrUnknownDomain is returned when the snapshot has no list for a domain.
var ErrUnknownDomain = errors.New("fixture: domain not in snapshot")

// Snapshot is the decoded document.
type Snapshot struct {
	Subjects []*population.Subject `yaml:"subjects"`
	Domains  map[string]yaml.Node  `yaml:"domains"`
}

// ObjectGetter is the part of the S3 client the source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source reads the snapshot behind a URI: a file path, file:// URL or
// s3://bucket/key. The document is fetched and decoded on every load so
// callers never share mutable entities.
type Source struct {
	uri    string
	client ObjectGetter
}

// Open builds a Source for uri. An S3 client is created from the default
// AWS credential chain only when the URI needs one.
func Open(ctx context.Context, uri, region string) (*Source, error) {
	if uri == "" {
		return nil, errors.New("fixture uri required")
	}
	if !strings.HasPrefix(uri, "s3://") {
		return &Source{uri: uri}, nil
	}
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSource(uri, s3.NewFromConfig(awsCfg)), nil
}

// NewSource builds a Source with an explicit S3 client.
func NewSource(uri string, client ObjectGetter) *Source {
	return &Source{uri: uri, client: client}
}

func (s *Source) read(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(s.uri)
	if err != nil {
		return nil, fmt.Errorf("parse fixture uri: %w", err)
	}
	switch u.Scheme {
	case "s3":
		if s.client == nil {
			return nil, errors.New("fixture: s3 uri without client")
		}
		key := strings.TrimPrefix(u.Path, "/")
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &u.Host, Key: &key})
		if err != nil {
			return nil, fmt.Errorf("get s3://%s/%s: %w", u.Host, key, err)
		}
		defer out.Body.Close()
		return io.ReadAll(out.Body)
	case "file":
		return os.ReadFile(u.Path)
	default:
		return os.ReadFile(s.uri)
	}
}

// Snapshot fetches and decodes the document.
func (s *Source) Snapshot(ctx context.Context) (*Snapshot, error) {
	raw, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &snap, nil
}

// Ping checks that the snapshot can be fetched and decoded.
func (s *Source) Ping(ctx context.Context) error {
	_, err := s.Snapshot(ctx)
	return err
}

// LoadPopulation implements provider.PopulationLoader.
func (s *Source) LoadPopulation(ctx context.Context, datasets []string) ([]*population.Subject, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*population.Subject, 0, len(snap.Subjects))
	for _, sub := range snap.Subjects {
		if sub.InDatasets(datasets) {
			out = append(out, sub)
		}
	}
	return out, nil
}

// Events loads one domain's list from a Source.
type Events[E engine.Entity] struct {
	src    *Source
	domain string
}

func NewEvents[E engine.Entity](src *Source, domain string) *Events[E] {
	return &Events[E]{src: src, domain: domain}
}

// LoadEvents implements provider.EventLoader. Entities are scoped to the
// datasets through their subject; entities of unknown subjects are dropped.
func (l *Events[E]) LoadEvents(ctx context.Context, datasets []string) ([]E, error) {
	snap, err := l.src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := snap.Domains[l.domain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, l.domain)
	}
	var all []E
	if err := node.Decode(&all); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.domain, err)
	}
	scope := make(map[string]struct{}, len(snap.Subjects))
	for _, sub := range snap.Subjects {
		if sub.InDatasets(datasets) {
			scope[sub.USUBJID] = struct{}{}
		}
	}
	out := make([]E, 0, len(all))
	for _, e := range all {
		if _, ok := scope[e.SubjectID()]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}
