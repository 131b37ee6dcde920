package pkg

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SearchResult is one match returned by Search: Name is the package
// name, DisplayPath is how it's shown to the user (the repo-relative SBO
// directory for a real package, or "META/<name>" for a meta-package).
type SearchResult struct {
	Name        string
	DisplayPath string
}

// DiscoverMetaPackages scans depDir for any dependency file not already
// known to g and registers it as a meta-package when it carries the
// METAPKG marker. Meta-packages are normally created lazily, one at a
// time, as Graph.Search encounters their name in a REQUIRED/OPTIONAL
// list; the search command runs this full scan, which touches every file
// in depDir once, up front, before calling Search.
func DiscoverMetaPackages(g *Graph) error {
	entries, err := os.ReadDir(g.DepDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if g.SBOPkgs.Find(name) != nil || g.MetaPkgs.Find(name) != nil {
			continue
		}
		isMeta, err := depFileIsMeta(filepath.Join(g.DepDir, name))
		if err != nil {
			continue
		}
		if isMeta {
			g.MetaPkgs.Insert(&Package{Name: name, IsMeta: true})
		}
	}
	return nil
}

// Search returns every catalog package whose name contains substr,
// case-insensitively, sorted by name. Meta-packages are included, so the
// caller should run DiscoverMetaPackages first if it wants meta-packages
// that haven't yet been referenced by any loaded dependency file.
func Search(g *Graph, substr string) []SearchResult {
	needle := strings.ToLower(substr)
	var results []SearchResult

	for _, p := range g.SBOPkgs.All() {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			results = append(results, SearchResult{Name: p.Name, DisplayPath: p.SBODir})
		}
	}
	for _, p := range g.MetaPkgs.All() {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			results = append(results, SearchResult{Name: p.Name, DisplayPath: "META/" + p.Name})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}
