package pkg

import (
	"sort"
	"strings"
)

// TagFilter selects which installed-package tags count as "installed" for
// a given check. An empty TagFilter matches every tag: this is the
// ANY_INSTALLED behavior, used whenever the caller only cares that some
// build of the package is present, regardless of which repository or
// build variant produced it.
type TagFilter string

// AnyTag is the zero value of TagFilter and matches every installed tag.
const AnyTag TagFilter = ""

// InstalledEntry is one parsed row of the installed-package oracle:
// either a record from the local package database
// (name-version-arch-build{tag}) or a column of a slackpkg pkglist file
// parsed into the same shape.
type InstalledEntry struct {
	Name    string
	Version string
	Arch    string
	Build   string
	Tag     string
}

// Oracle answers "is this package installed" queries. Two backends are
// provided: PackagesOracle (scans a local package database directory) and
// SlackpkgRepoOracle (parses a slackpkg-style pkglist file). Both build
// their name-sorted cache lazily, on first use.
type Oracle interface {
	// IsInstalled reports whether name is installed with a tag matching
	// filter (AnyTag matches any tag).
	IsInstalled(name string, filter TagFilter) (bool, error)
	// Get returns the i'th installed entry in sorted order.
	Get(i int) (InstalledEntry, error)
	// Search returns every installed entry whose name contains substr,
	// case-insensitively.
	Search(substr string) ([]InstalledEntry, error)
	// Size returns the number of installed entries.
	Size() (int, error)
}

// ParseInstalledFilename splits a package database filename of the form
// name-version-arch-build{tag} into its parts. Exactly three right-to-
// left splits on '-' peel off build, arch, and version in turn (so a
// name containing '-' is handled correctly); the build field is then
// walked forward through its leading digit run, and whatever non-digit
// suffix remains past that run is the build tag.
func ParseInstalledFilename(filename string) (InstalledEntry, bool) {
	rest := filename
	build, ok := rsplit(&rest)
	if !ok {
		return InstalledEntry{}, false
	}
	arch, ok := rsplit(&rest)
	if !ok {
		return InstalledEntry{}, false
	}
	version, ok := rsplit(&rest)
	if !ok {
		return InstalledEntry{}, false
	}
	name := rest

	i := 0
	for i < len(build) && build[i] >= '0' && build[i] <= '9' {
		i++
	}
	tag := build[i:]
	buildNum := build[:i]

	return InstalledEntry{
		Name:    name,
		Version: version,
		Arch:    arch,
		Build:   buildNum,
		Tag:     tag,
	}, true
}

// rsplit peels the final '-'-delimited field off *s, shrinking *s to the
// remainder, and returns that field.
func rsplit(s *string) (string, bool) {
	i := strings.LastIndexByte(*s, '-')
	if i < 0 {
		return "", false
	}
	field := (*s)[i+1:]
	*s = (*s)[:i]
	return field, true
}

func sortEntries(entries []InstalledEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}

// InstalledVersion looks up name's exact installed version through o,
// regardless of backend. It is how the update planner decides whether an
// installed package is older, newer, or level with the catalog.
func InstalledVersion(o Oracle, name string) (version string, installed bool, err error) {
	matches, err := o.Search(name)
	if err != nil {
		return "", false, err
	}
	for _, m := range matches {
		if m.Name == name {
			return m.Version, true, nil
		}
	}
	return "", false, nil
}

func searchEntries(entries []InstalledEntry, substr string) []InstalledEntry {
	needle := strings.ToLower(substr)
	var out []InstalledEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}
