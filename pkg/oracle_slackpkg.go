package pkg

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultSlackpkgPkglist is the conventional location of slackpkg's
// installed-package-list cache.
const DefaultSlackpkgPkglist = "/var/lib/slackpkg/pkglist"

const slackpkgColumns = 8
const slackpkgFilenameColumn = 5

// SlackpkgRepoOracle answers installed-package queries from a
// slackpkg-style pkglist file: a whitespace-columnar listing of every
// package slackpkg knows about, filtered to the rows belonging to
// repoName. It is the oracle backend used when the tool runs against a
// remote repository's view of what's installed, rather than the local
// package database.
type SlackpkgRepoOracle struct {
	path     string
	repoName string
	cache    []InstalledEntry
	loaded   bool
}

func NewSlackpkgRepoOracle(path, repoName string) *SlackpkgRepoOracle {
	return &SlackpkgRepoOracle{path: path, repoName: repoName}
}

func (o *SlackpkgRepoOracle) load() error {
	if o.loaded {
		return nil
	}
	f, err := os.Open(o.path)
	if err != nil {
		return fmt.Errorf("read slackpkg pkglist %s: %w", o.path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) != slackpkgColumns {
			continue
		}
		if cols[0] != o.repoName {
			continue
		}
		parsed, ok := ParseInstalledFilename(cols[slackpkgFilenameColumn])
		if !ok {
			continue
		}
		o.cache = append(o.cache, parsed)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	sortEntries(o.cache)
	o.loaded = true
	return nil
}

func (o *SlackpkgRepoOracle) IsInstalled(name string, filter TagFilter) (bool, error) {
	if err := o.load(); err != nil {
		return false, err
	}
	i := sort.Search(len(o.cache), func(i int) bool { return o.cache[i].Name >= name })
	for ; i < len(o.cache) && o.cache[i].Name == name; i++ {
		if filter == AnyTag || o.cache[i].Tag == string(filter) {
			return true, nil
		}
	}
	return false, nil
}

func (o *SlackpkgRepoOracle) Get(i int) (InstalledEntry, error) {
	if err := o.load(); err != nil {
		return InstalledEntry{}, err
	}
	if i < 0 || i >= len(o.cache) {
		return InstalledEntry{}, fmt.Errorf("installed-package index %d out of range", i)
	}
	return o.cache[i], nil
}

func (o *SlackpkgRepoOracle) Search(substr string) ([]InstalledEntry, error) {
	if err := o.load(); err != nil {
		return nil, err
	}
	return searchEntries(o.cache, substr), nil
}

func (o *SlackpkgRepoOracle) Size() (int, error) {
	if err := o.load(); err != nil {
		return 0, err
	}
	return len(o.cache), nil
}
