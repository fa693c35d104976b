package sources

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/company-discovery/internal/entity"
)

const registryConcurrency = 4

// Store persists ingested records, ignoring ones already known.
type Store interface {
	InsertIfAbsent(ctx context.Context, company *entity.Company) (bool, error)
}

// SourceCount reports the outcome of one adapter during an ingest.
type SourceCount struct {
	Source   entity.DataSource `json:"source"`
	Found    int               `json:"found"`
	Inserted int               `json:"inserted"`
}

// IngestSummary aggregates an ingest across adapters.
type IngestSummary struct {
	Sources  []SourceCount `json:"sources"`
	Found    int           `json:"found"`
	Inserted int           `json:"inserted"`
}

// ConnectionStatus is one row of the adapter connectivity matrix.
type ConnectionStatus struct {
	Source    entity.DataSource `json:"source"`
	Synthetic bool              `json:"synthetic"`
	Connected bool              `json:"connected"`
}

// Registry holds the configured adapters in registration order.
type Registry struct {
	sources  []Source
	store    Store
	defaults []entity.DataSource
}

// NewRegistry builds a registry. defaults names the adapters used when an
// ingest does not select any; empty means every live adapter.
func NewRegistry(store Store, defaults []string, sources ...Source) *Registry {
	r := &Registry{store: store}
	for _, d := range defaults {
		if d = strings.TrimSpace(d); d != "" {
			r.defaults = append(r.defaults, entity.DataSource(d))
		}
	}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds s, replacing an adapter with the same name.
func (r *Registry) Register(s Source) {
	for i, existing := range r.sources {
		if existing.Name() == s.Name() {
			r.sources[i] = s
			return
		}
	}
	r.sources = append(r.sources, s)
}

// Source returns the adapter registered under name.
func (r *Registry) Source(name entity.DataSource) (Source, bool) {
	for _, s := range r.sources {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Resolve maps requested names to adapters. Unknown names are ignored.
func (r *Registry) Resolve(names []string) []Source {
	var selected []entity.DataSource
	for _, n := range names {
		if n = strings.TrimSpace(strings.ToLower(n)); n != "" {
			selected = append(selected, entity.DataSource(n))
		}
	}
	if len(selected) == 0 {
		selected = r.defaults
	}
	if len(selected) == 0 {
		var out []Source
		for _, s := range r.sources {
			if !s.Synthetic() {
				out = append(out, s)
			}
		}
		return out
	}

	var out []Source
	seen := map[entity.DataSource]bool{}
	for _, name := range selected {
		if seen[name] {
			continue
		}
		seen[name] = true
		if s, ok := r.Source(name); ok {
			out = append(out, s)
		}
	}
	return out
}

// Ingest searches the selected adapters concurrently and stores new records.
func (r *Registry) Ingest(ctx context.Context, names []string, q Query) IngestSummary {
	selected := r.Resolve(names)
	results := make([][]entity.Company, len(selected))

	var g errgroup.Group
	g.SetLimit(registryConcurrency)
	for i, s := range selected {
		g.Go(func() error {
			results[i] = s.Search(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	summary := IngestSummary{Sources: make([]SourceCount, 0, len(selected))}
	for i, s := range selected {
		count := SourceCount{Source: s.Name(), Found: len(results[i])}
		for j := range results[i] {
			c := &results[i][j]
			c.DataSource = s.Name()
			c.Synthetic = s.Synthetic()
			c.EnsureDefaults()
			if r.store == nil {
				continue
			}
			inserted, err := r.store.InsertIfAbsent(ctx, c)
			if err != nil {
				zap.L().Error("store ingested company failed",
					zap.String("source", string(s.Name())), zap.String("name", c.Name), zap.Error(err))
				continue
			}
			if inserted {
				count.Inserted++
			}
		}
		summary.Found += count.Found
		summary.Inserted += count.Inserted
		summary.Sources = append(summary.Sources, count)
	}

	zap.L().Info("external ingest finished",
		zap.String("query", q.Text),
		zap.Int("sources", len(selected)),
		zap.Int("found", summary.Found),
		zap.Int("inserted", summary.Inserted),
	)
	return summary
}

// TestConnections probes every registered adapter concurrently.
func (r *Registry) TestConnections(ctx context.Context) []ConnectionStatus {
	out := make([]ConnectionStatus, len(r.sources))
	var g errgroup.Group
	g.SetLimit(registryConcurrency)
	for i, s := range r.sources {
		g.Go(func() error {
			out[i] = ConnectionStatus{Source: s.Name(), Synthetic: s.Synthetic(), Connected: s.TestConnection(ctx)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
