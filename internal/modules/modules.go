// Package modules implements the ModuleResolver collaborator (spec §6): a
// pluggable lookup from a module specifier to source text, native status,
// or unresolved, so the core never touches the filesystem directly.
package modules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spicelang/spicec/internal/config"
)

// Kind discriminates what a resolved module turned out to be.
type Kind int

const (
	KindSource Kind = iota
	KindNative
	KindUnresolved
)

// Resolution is the result of resolving one module specifier.
type Resolution struct {
	Kind   Kind
	Path   string
	Source string
}

// Resolver is implemented by any module lookup collaborator.
type Resolver interface {
	Resolve(modulePath string) Resolution
}

// FSResolver resolves dotted module specifiers to `.spc` files under a set
// of configured search roots, trying `<module>.spc` then
// `<module>/__init__.spc`.
type FSResolver struct {
	SearchRoots []string
}

// NewFSResolver builds an FSResolver over the given search roots, adding
// the current directory if roots is empty.
func NewFSResolver(roots []string) *FSResolver {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	return &FSResolver{SearchRoots: roots}
}

// Resolve implements Resolver.
func (r *FSResolver) Resolve(modulePath string) Resolution {
	rel := strings.ReplaceAll(modulePath, ".", string(filepath.Separator))
	candidates := []string{
		rel + config.SourceFileExtension,
		filepath.Join(rel, "__init__"+config.SourceFileExtension),
	}
	for _, root := range r.SearchRoots {
		for _, candidate := range candidates {
			full := filepath.Join(root, candidate)
			data, err := os.ReadFile(full)
			if err == nil {
				return Resolution{Kind: KindSource, Path: full, Source: string(data)}
			}
		}
	}
	return Resolution{Kind: KindUnresolved, Path: modulePath}
}
