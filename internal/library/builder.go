package library

import (
	"fmt"
	"log/slog"

	"github.com/stacklok/asset-librarian/internal/config"
	"github.com/stacklok/asset-librarian/internal/filtering"
)

// Build creates the libraries described by the configuration, in priority order
func Build(cfg *config.Config) ([]*Info, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	shared := make(map[string]*SharedFilter, len(cfg.SharedFilters))
	for i := range cfg.SharedFilters {
		sc := &cfg.SharedFilters[i]
		filters, err := buildFilters(sc.Filters)
		if err != nil {
			return nil, fmt.Errorf("shared filter %s: %w", sc.Name, err)
		}
		shared[sc.Name] = &SharedFilter{
			Name: sc.Name,
			Info: Info{Name: sc.Name, Filters: filters},
		}
	}

	// References are resolved in a second pass so shared filters can point at each other
	for i := range cfg.SharedFilters {
		sc := &cfg.SharedFilters[i]
		refs, err := resolveShared(sc.SharedFilters, shared)
		if err != nil {
			return nil, fmt.Errorf("shared filter %s: %w", sc.Name, err)
		}
		shared[sc.Name].Info.SharedFilters = refs
	}

	libs := make([]*Info, 0, len(cfg.Libraries))
	for i := range cfg.Libraries {
		lc := &cfg.Libraries[i]
		filters, err := buildFilters(lc.Filters)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", lc.Name, err)
		}
		refs, err := resolveShared(lc.SharedFilters, shared)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", lc.Name, err)
		}

		libs = append(libs, &Info{
			Name:          lc.Name,
			Filters:       filters,
			SharedFilters: refs,
			Fallthrough:   lc.Fallthrough,
			PackageAssets: lc.ShouldPackageAssets(),
		})
	}

	slog.Debug("Libraries built",
		"libraries", len(libs),
		"sharedFilters", len(shared))

	return libs, nil
}

func buildFilters(cfgs []*config.FilterConfig) ([]filtering.Filter, error) {
	filters := make([]filtering.Filter, 0, len(cfgs))
	for i, fc := range cfgs {
		f, err := filtering.New(fc)
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func resolveShared(names []string, shared map[string]*SharedFilter) ([]*SharedFilter, error) {
	refs := make([]*SharedFilter, 0, len(names))
	for _, name := range names {
		sf, ok := shared[name]
		if !ok {
			return nil, fmt.Errorf("unknown shared filter %q", name)
		}
		refs = append(refs, sf)
	}
	return refs, nil
}

// Find returns the library with the given name, or nil. Nil entries are skipped.
func Find(libs []*Info, name string) *Info {
	for _, lib := range libs {
		if lib != nil && lib.Name == name {
			return lib
		}
	}
	return nil
}
