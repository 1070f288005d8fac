// Package registry holds the table of C libraries that "coda install" knows
// how to fetch.
package registry

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	codaerrors "github.com/conneroisu/coda/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var registryYAML []byte

// Package is one installable library.
type Package struct {
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Category string `yaml:"-" json:"category"`
}

type document struct {
	Categories []struct {
		Name     string    `yaml:"name"`
		Packages []Package `yaml:"packages"`
	} `yaml:"categories"`
}

// Registry maps lowercase package names to their git repositories.
type Registry struct {
	packages map[string]Package
	ordered  []Package
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry compiled into the binary.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Parse(registryYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded package registry is corrupted: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Parse builds a registry from its YAML form. Names must be unique,
// lowercase and carry a URL.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	r := &Registry{packages: make(map[string]Package)}
	for _, cat := range doc.Categories {
		for _, pkg := range cat.Packages {
			switch {
			case pkg.Name == "":
				return nil, fmt.Errorf("category %q: package without a name", cat.Name)
			case pkg.Name != strings.ToLower(pkg.Name):
				return nil, fmt.Errorf("package %q: names must be lowercase", pkg.Name)
			case pkg.URL == "":
				return nil, fmt.Errorf("package %q: missing url", pkg.Name)
			}
			if _, dup := r.packages[pkg.Name]; dup {
				return nil, fmt.Errorf("package %q listed twice", pkg.Name)
			}

			pkg.Category = cat.Name
			r.packages[pkg.Name] = pkg
			r.ordered = append(r.ordered, pkg)
		}
	}
	return r, nil
}

// Lookup finds a package by name. Names are matched case-insensitively.
func (r *Registry) Lookup(name string) (Package, error) {
	pkg, ok := r.packages[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Package{}, codaerrors.NewInstallError(codaerrors.CodePackageNotFound,
			fmt.Sprintf("package '%s' not found in the coda registry", name), nil).
			WithContext("package", name)
	}
	return pkg, nil
}

// List returns every package in registry order.
func (r *Registry) List() []Package {
	out := make([]Package, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the sorted package names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.packages))
	for name := range r.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of packages.
func (r *Registry) Count() int {
	return len(r.packages)
}
