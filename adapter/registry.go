package adapter

import (
	"log/slog"
	"slices"
	"time"

	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/normalize"
	"github.com/use-agent/fahndung/pagination"
)

// Options are the crawl settings every adapter is built with.
type Options struct {
	RecrawlThreshold int
	LoadMoreMax      int
	MaxPages         int
	Now              func() time.Time
	Logger           *slog.Logger
}

// OptionsFrom derives adapter options from the crawl configuration.
func OptionsFrom(cfg config.CrawlConfig, logger *slog.Logger) Options {
	return Options{
		RecrawlThreshold: cfg.RecrawlThreshold,
		LoadMoreMax:      cfg.LoadMoreMax,
		MaxPages:         cfg.MaxPages,
		Now:              time.Now,
		Logger:           logger,
	}
}

// builders lists the sources in crawl order.
var builders = []func(Options) []*Listing{
	badenWuerttemberg,
	bayern,
	berlin,
	brandenburg,
	bremen,
	hessen,
	mecklenburgVorpommern,
	nordrheinWestfalen,
	rheinlandPfalz,
	schleswigHolstein,
	bayernNews,
	berlinNews,
	brandenburgNews,
}

// describe builds a descriptor with the retention window of its content type
// and the configured recrawl threshold.
func (o Options) describe(j models.Jurisdiction, ct models.ContentType, p models.PaginationKind, ord models.Ordering) models.SourceDescriptor {
	threshold := o.RecrawlThreshold
	if threshold == 0 {
		threshold = models.DefaultRecrawlThreshold
	}
	return models.SourceDescriptor{
		Jurisdiction:     j,
		ContentType:      ct,
		Pagination:       p,
		Retention:        models.RetentionFor(ct),
		Ordering:         ord,
		RecrawlThreshold: threshold,
		NeedsBrowser:     p == models.PaginationLoadMore,
	}
}

func (o Options) loadMore(url, trigger string) *pagination.LoadMore {
	c := pagination.NewLoadMore(url, trigger)
	if o.LoadMoreMax > 0 {
		c.MaxIterations = o.LoadMoreMax
	}
	return c
}

func (o Options) normalizer() *normalize.Normalizer {
	n := normalize.New()
	if o.Now != nil {
		n.Now = o.Now
	}
	return n
}

// Registry is the immutable set of adapters built at startup.
type Registry struct {
	adapters []Adapter
}

// NewRegistry builds every source and applies the overrides of the optional
// sources file. Disabled sources are left out.
func NewRegistry(o Options, sources *config.SourcesFile) *Registry {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	r := &Registry{}
	for _, build := range builders {
		for _, l := range build(o) {
			l.Logger = o.Logger
			if l.Normalizer == nil {
				l.Normalizer = o.normalizer()
			}
			if l.MaxPages == 0 {
				l.MaxPages = o.MaxPages
			}
			if ov, ok := sources.Lookup(l.Desc.Name()); ok {
				if ov.Enabled != nil && !*ov.Enabled {
					o.Logger.Info("source disabled by sources file", "source", l.Desc.Name())
					continue
				}
				if ov.RecrawlThreshold != nil {
					l.Desc.RecrawlThreshold = *ov.RecrawlThreshold
				}
				if ov.MaxPages != nil {
					l.MaxPages = *ov.MaxPages
				}
			}
			r.adapters = append(r.adapters, l)
		}
	}
	return r
}

// All returns every enabled adapter in crawl order.
func (r *Registry) All() []Adapter {
	return append([]Adapter(nil), r.adapters...)
}

// Persons returns the wanted and missing adapters.
func (r *Registry) Persons() []Adapter {
	return r.Filter(func(d models.SourceDescriptor) bool { return d.ContentType.IsPerson() })
}

// News returns the news adapters.
func (r *Registry) News() []Adapter {
	return r.Filter(func(d models.SourceDescriptor) bool { return d.ContentType == models.ContentNews })
}

// Filter returns the adapters whose descriptor satisfies keep.
func (r *Registry) Filter(keep func(models.SourceDescriptor) bool) []Adapter {
	var out []Adapter
	for _, a := range r.adapters {
		if keep(a.Source()) {
			out = append(out, a)
		}
	}
	return out
}

// Select narrows adapters to the given jurisdictions and content types.
// Empty arguments match everything.
func Select(adapters []Adapter, jurisdictions []models.Jurisdiction, types []models.ContentType) []Adapter {
	var out []Adapter
	for _, a := range adapters {
		d := a.Source()
		if len(jurisdictions) > 0 && !slices.Contains(jurisdictions, d.Jurisdiction) {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, d.ContentType) {
			continue
		}
		out = append(out, a)
	}
	return out
}
