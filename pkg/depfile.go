package pkg

import (
	"bufio"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// depFileIsMeta reports whether the dependency file at path begins (after
// blank/comment lines) with the METAPKG marker.
func depFileIsMeta(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := skipDepLine(sc.Text())
		if line == "" {
			continue
		}
		return line == "METAPKG", nil
	}
	return false, sc.Err()
}

// skipDepLine normalizes a raw dependency-file line the way the parser
// expects: tabs and backslashes become spaces, comments starting with '#'
// are stripped, and the result is trimmed. A line that is empty, or that
// starts with '-' (an explicitly disabled dependency), returns "".
func skipDepLine(raw string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\\':
			return ' '
		default:
			return r
		}
	}, raw)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return ""
	}
	return s
}

type depBlock int

const (
	blockNone depBlock = iota
	blockRequired
	blockOptional
	blockBuildOpts
)

// DepFilePath returns the path to pkg's dependency file under depDir.
func DepFilePath(depDir, name string) string {
	return filepath.Join(depDir, name)
}

// DepFileExists reports whether pkg has a dependency file.
func DepFileExists(depDir, name string) bool {
	_, err := os.Stat(DepFilePath(depDir, name))
	return err == nil
}

// CreateDefaultDep synthesizes a dependency file for p from its
// SlackBuild's REQUIRES= field: every required token except the special
// "%README%" marker becomes a REQUIRED entry, and the OPTIONAL/BUILDOPTS
// blocks are left empty. readRequires is the .info-parsing collaborator;
// it is injected so tests can supply fixtures without real SlackBuild
// directories on disk.
func CreateDefaultDep(depDir string, p *Package, readRequires func(sboDir string) ([]string, error)) error {
	if p.SBODir == "" {
		return ErrNoSBODir
	}
	reqs, err := readRequires(p.SBODir)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("REQUIRED:\n")
	for _, r := range reqs {
		if r == "" || r == "%README%" {
			continue
		}
		fmt.Fprintf(&b, "%s\n", r)
	}
	b.WriteString("\nOPTIONAL:\n\nBUILDOPTS:\n")

	return os.WriteFile(DepFilePath(depDir, p.Name), []byte(b.String()), 0644)
}

// LoaderOptions controls how LoadDep walks a dependency file.
type LoaderOptions struct {
	Recursive bool // descend into each dependency's own dep file
	Optional  bool // also follow OPTIONAL: entries
	ReadRequires func(sboDir string) ([]string, error)
}

// loadFrame is one entry of LoadDep's explicit DFS stack, replacing the
// natural recursion of the original parser: each frame remembers which
// package it is loading and where its scanner left off, so a dependency
// that itself has unsatisfied children can be paused and resumed without
// growing the Go call stack (or risking it on a pathologically deep or
// cyclic repository).
type loadFrame struct {
	pkg     *Package
	scanner *bufio.Scanner
	file    *os.File
	block   depBlock
	lineNo  int
}

// LoadDep loads the dependency file for root (and, if opts.Recursive, the
// transitive closure reachable from it) into g, linking each package's
// Required/Parents edges as it goes.
//
// Two bookkeeping sets drive cycle detection and the missing-dep-file
// recovery path, mirroring the original parser's visit_list/visit_path
// pair: visitPath is the stack of ancestors currently open (a node
// re-entering while still GREY on this stack is a cycle); visited is the
// set of nodes this call has already fully processed, so a diamond-shaped
// dependency graph is only parsed once.
func LoadDep(g *Graph, root *Package, opts LoaderOptions) error {
	visitPath := map[*Package]bool{}
	visited := map[*Package]bool{}
	var stack []*loadFrame

	push := func(p *Package) error {
		if visitPath[p] {
			return &CycleError{Parent: stack[len(stack)-1].pkg.Name, Child: p.Name}
		}
		if visited[p] {
			return nil
		}
		path := DepFilePath(g.DepDir, p.Name)
		f, err := os.Open(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			if opts.ReadRequires == nil {
				return fmt.Errorf("dependency file missing for %s and no default synthesizer configured", p.Name)
			}
			if err := CreateDefaultDep(g.DepDir, p, opts.ReadRequires); err != nil {
				return fmt.Errorf("synthesize default dependency file for %s: %w", p.Name, err)
			}
			f, err = os.Open(path)
			if err != nil {
				return err
			}
		}
		sc := bufio.NewScanner(f)
		visitPath[p] = true
		stack = append(stack, &loadFrame{pkg: p, scanner: sc, file: f})
		return nil
	}

	pop := func() {
		top := stack[len(stack)-1]
		top.file.Close()
		delete(visitPath, top.pkg)
		visited[top.pkg] = true
		stack = stack[:len(stack)-1]
	}

	if err := push(root); err != nil {
		return err
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		advanced := false

		for top.scanner.Scan() {
			top.lineNo++
			raw := top.scanner.Text()
			line := skipDepLine(raw)
			switch line {
			case "METAPKG":
				top.pkg.IsMeta = true
				continue
			case "REQUIRED:":
				top.block = blockRequired
				continue
			case "OPTIONAL:":
				top.block = blockOptional
				continue
			case "BUILDOPTS:":
				top.block = blockBuildOpts
				continue
			}

			if line == "" {
				continue
			}
			if top.block == blockNone {
				return &DepFileError{Path: DepFilePath(g.DepDir, top.pkg.Name), Line: top.lineNo}
			}

			switch top.block {
			case blockBuildOpts:
				top.pkg.BuildOpts = append(top.pkg.BuildOpts, line)
				continue
			case blockOptional:
				if !opts.Optional {
					continue
				}
			case blockRequired:
			}

			child, err := g.Search(line)
			if err != nil {
				return err
			}
			if child == nil {
				// Dangling reference: the name isn't a known package and
				// doesn't resolve to a meta-package either. Non-fatal.
				fmt.Fprintf(os.Stderr, "warning: %s: dangling dependency reference %q\n", top.pkg.Name, line)
				continue
			}
			insertUnique(&top.pkg.Required, child)
			insertUnique(&child.Parents, top.pkg)

			if !opts.Recursive && !child.IsMeta {
				continue
			}
			if err := push(child); err != nil {
				return err
			}
			advanced = true
			break
		}

		if advanced {
			continue
		}
		if err := top.scanner.Err(); err != nil {
			return err
		}
		pop()
	}

	return nil
}

func insertUnique(list *[]*Package, p *Package) {
	for _, q := range *list {
		if q == p {
			return
		}
	}
	*list = append(*list, p)
}

// LoadAllDeps loads the dependency file for every real (non-meta) package
// in g; a meta-package is loaded only when one of those reaches it. Used
// by commands that need the whole graph materialized, such as remove and
// check-updates.
func LoadAllDeps(g *Graph, opts LoaderOptions, onlyInstalled func(*Package) bool) error {
	names := make([]*Package, 0, g.SBOPkgs.Len())
	names = append(names, g.SBOPkgs.All()...)
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })
	for _, p := range names {
		if onlyInstalled != nil && !onlyInstalled(p) {
			continue
		}
		if err := LoadDep(g, p, opts); err != nil {
			return err
		}
	}
	return nil
}

// InfoCRC computes the identity hash of a SlackBuild definition: CRC32
// over the concatenation of its README contents and its REQUIRES= field
// value. Two catalog entries with the same InfoCRC are guaranteed to have
// the same upstream definition, which is what lets UpdateDB decide
// whether a changed package needs re-review.
func InfoCRC(readmeText string, requires []string) uint32 {
	h := crc32.NewIEEE()
	h.Write([]byte(readmeText))
	h.Write([]byte(strings.Join(requires, " ")))
	return h.Sum32()
}
