package pkg

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// Package is a single catalog entry: either a real SlackBuild directory
// scanned from the repository, or a lazily-created meta-package. Package
// holds only durable metadata and graph edges; traversal state (color,
// distance, edge cursor) and planner-transient flags live in the owning
// Graph's node-state table, not here, so the catalog stays a pure record
// of what the repository and PKGDB say.
type Package struct {
	Name     string
	SBODir   string // relative to the repo root; empty for meta-packages
	Version  string
	InfoCRC  uint32
	Reviewed bool
	Tracked  bool
	IsMeta   bool

	Required  []*Package
	BuildOpts []string
	Parents   []*Package
}

func (p *Package) String() string { return p.Name }

// NodeSet is a name-sorted collection of packages supporting binary search.
// It mirrors the catalog's split between real SlackBuild packages and
// meta-packages: each half of a Graph is one NodeSet.
type NodeSet struct {
	nodes []*Package
}

func NewNodeSet() *NodeSet { return &NodeSet{} }

func (s *NodeSet) Len() int { return len(s.nodes) }

func (s *NodeSet) All() []*Package { return s.nodes }

// Find returns the package named name, or nil.
func (s *NodeSet) Find(name string) *Package {
	i := sort.Search(len(s.nodes), func(i int) bool { return s.nodes[i].Name >= name })
	if i < len(s.nodes) && s.nodes[i].Name == name {
		return s.nodes[i]
	}
	return nil
}

// Insert adds pkg in sorted position. It is a no-op if a package with the
// same name is already present.
func (s *NodeSet) Insert(p *Package) {
	i := sort.Search(len(s.nodes), func(i int) bool { return s.nodes[i].Name >= p.Name })
	if i < len(s.nodes) && s.nodes[i].Name == p.Name {
		return
	}
	s.nodes = append(s.nodes, nil)
	copy(s.nodes[i+1:], s.nodes[i:])
	s.nodes[i] = p
}

func (s *NodeSet) Remove(name string) {
	i := sort.Search(len(s.nodes), func(i int) bool { return s.nodes[i].Name >= name })
	if i < len(s.nodes) && s.nodes[i].Name == name {
		s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	}
}

// color is the three-state traversal marker used by Iterator.
type color int

const (
	white color = iota
	grey
	black
)

// UpdateKind classifies why a package appears in an update run's build
// list. See queue_update.go.
type UpdateKind int

const (
	UpdateNone UpdateKind = iota
	UpdateUpdate
	UpdateDepAdded
	UpdateDepUpdate
	UpdateDepRebuild
	UpdateDepDowngrade
	UpdateRevdepUpdate
	UpdateRevdepRebuild
	UpdateRevdepDowngrade
)

// String renders the short bracketed label the original tool prints next
// to each build-list entry during an update run.
func (k UpdateKind) String() string {
	switch k {
	case UpdateUpdate:
		return "U"
	case UpdateDepAdded:
		return "DA"
	case UpdateDepUpdate:
		return "DU"
	case UpdateDepRebuild:
		return "DR"
	case UpdateDepDowngrade:
		return "DD"
	case UpdateRevdepUpdate:
		return "PU"
	case UpdateRevdepRebuild:
		return "PR"
	case UpdateRevdepDowngrade:
		return "PD"
	default:
		return ""
	}
}

// IsDowngrade reports whether k is one of the two classifications that
// get stripped from the final build list: a downgrade is reported for
// visibility but never queued, since this engine never builds anything
// older than what's already installed.
func (k UpdateKind) IsDowngrade() bool {
	return k == UpdateDepDowngrade || k == UpdateRevdepDowngrade
}

// updateRecord is the transient classification a node accumulates during
// an update run. It survives Graph.ClearMarkers (which only resets the
// iterator-proper fields) because the update fix-point loop needs earlier
// classifications to persist across outer passes; it is reset explicitly
// with Graph.ResetUpdate.
type updateRecord struct {
	kind           UpdateKind
	catalogVersion string
}

// Classification returns p's current update classification, valid only
// during and after an update planning run.
func (g *Graph) Classification(p *Package) UpdateKind { return g.state(p).update.kind }

// nodeState is the per-package traversal and planner state owned by a
// Graph. Keeping it out of Package means the catalog can be copied,
// inspected, or shared across multiple concurrent traversals (of which
// this engine only ever runs one at a time, but the separation keeps the
// catalog itself a passive data structure) without entangling transient
// bookkeeping into durable metadata.
type nodeState struct {
	dist      int
	color     color
	edgeIndex int

	forRemoval      bool
	parentInstalled bool
	update          updateRecord
}

// Graph is the full package catalog: the two NodeSets (real and
// meta-packages) plus the node-state table used by Iterator and the
// queue generators.
type Graph struct {
	SBOPkgs  *NodeSet
	MetaPkgs *NodeSet
	DepDir   string

	states map[*Package]*nodeState
}

func NewGraph(depDir string) *Graph {
	return &Graph{
		SBOPkgs:  NewNodeSet(),
		MetaPkgs: NewNodeSet(),
		DepDir:   depDir,
		states:   make(map[*Package]*nodeState),
	}
}

func (g *Graph) state(p *Package) *nodeState {
	s, ok := g.states[p]
	if !ok {
		s = &nodeState{dist: -1, color: white}
		g.states[p] = s
	}
	return s
}

// ClearMarkers resets the iterator-proper fields (color, distance, edge
// cursor) of every node touched so far. Update and removal flags are left
// alone: planners reset those explicitly, on their own schedule.
func (g *Graph) ClearMarkers() {
	for _, s := range g.states {
		s.dist = -1
		s.color = white
		s.edgeIndex = 0
	}
}

// ResetUpdate clears the update classification of every node.
func (g *Graph) ResetUpdate() {
	for _, s := range g.states {
		s.update = updateRecord{}
	}
}

// ResetRemoval clears the removal-planner flags of every node.
func (g *Graph) ResetRemoval() {
	for _, s := range g.states {
		s.forRemoval = false
		s.parentInstalled = false
	}
}

// Search looks up name in the real packages first, then the
// meta-packages. If name isn't found in either, but a dependency file of
// that name exists under DepDir and begins with the METAPKG marker, a new
// meta-package node is created, inserted, and returned: meta-packages are
// never scanned up front, only discovered on demand.
func (g *Graph) Search(name string) (*Package, error) {
	if p := g.SBOPkgs.Find(name); p != nil {
		return p, nil
	}
	if p := g.MetaPkgs.Find(name); p != nil {
		return p, nil
	}
	isMeta, err := depFileIsMeta(filepath.Join(g.DepDir, name))
	if err != nil || !isMeta {
		return nil, nil
	}
	p := &Package{Name: name, IsMeta: true}
	g.MetaPkgs.Insert(p)
	return p, nil
}

// ScanRepo walks repoRoot two levels deep (category/package) and returns a
// fresh, name-sorted NodeSet of every SlackBuild directory found. It does
// not touch the existing graph; callers decide how to merge the result
// (see UpdateDB for the merge-and-diff logic used by the updatedb command).
func ScanRepo(repoRoot string) (*NodeSet, error) {
	cats, err := os.ReadDir(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("scan repo %s: %w", repoRoot, err)
	}
	out := NewNodeSet()
	for _, cat := range cats {
		if !cat.IsDir() {
			continue
		}
		catPath := filepath.Join(repoRoot, cat.Name())
		pkgs, err := os.ReadDir(catPath)
		if err != nil {
			continue
		}
		for _, pd := range pkgs {
			if !pd.IsDir() {
				continue
			}
			rel := filepath.Join(cat.Name(), pd.Name())
			version := readSlackBuildVersion(filepath.Join(catPath, pd.Name()), pd.Name())
			out.Insert(&Package{
				Name:    pd.Name(),
				SBODir:  rel,
				Version: version,
			})
		}
	}
	return out, nil
}

// readSlackBuildVersion extracts VERSION=... from <name>.info, falling
// back to an empty string. Parsing the .info file's build metadata in
// full (MD5SUM, DOWNLOAD, etc.) is out of scope here; only the version is
// needed to populate a freshly scanned catalog entry.
func readSlackBuildVersion(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name+".info"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "VERSION="); ok {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}

// --- PKGDB ---

// LoadPKGDB reads the colon-separated PKGDB file at path into a fresh
// Graph. Each record is name:sbo_dir:version:info_crc_hex:reviewed:tracked.
func LoadPKGDB(path, depDir string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g := NewGraph(depDir)
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 6 {
			return nil, &PKGDBParseError{Line: lineNo, Text: line}
		}
		crc, err := strconv.ParseUint(fields[3], 16, 32)
		if err != nil {
			return nil, &PKGDBParseError{Line: lineNo, Text: line}
		}
		p := &Package{
			Name:     fields[0],
			SBODir:   fields[1],
			Version:  fields[2],
			InfoCRC:  uint32(crc),
			Reviewed: fields[4] == "1",
			Tracked:  fields[5] == "1",
		}
		g.SBOPkgs.Insert(p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// WritePKGDB writes every real (non-meta) package of g to path atomically:
// the full record set is rendered to a temp file in the same directory and
// renamed over path, so a crash mid-write never leaves a truncated PKGDB.
func WritePKGDB(path string, g *Graph) error {
	var b strings.Builder
	for _, p := range g.SBOPkgs.All() {
		if p.Name == "" {
			continue
		}
		fmt.Fprintf(&b, "%s:%s:%s:%08x:%s:%s\n",
			p.Name, p.SBODir, p.Version, p.InfoCRC,
			boolDigit(p.Reviewed), boolDigit(p.Tracked))
	}
	return renameio.WriteFile(path, []byte(b.String()), 0644)
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// DiffKind classifies one entry of an UpdateDB diff report.
type DiffKind int

const (
	DiffAdded DiffKind = iota
	DiffRemoved
	DiffModified
	DiffUpgraded
	DiffDowngraded
)

func (k DiffKind) String() string {
	switch k {
	case DiffAdded:
		return "A"
	case DiffRemoved:
		return "R"
	case DiffModified:
		return "M"
	case DiffUpgraded:
		return "U"
	case DiffDowngraded:
		return "D"
	default:
		return "?"
	}
}

type DiffEntry struct {
	Kind DiffKind
	Name string
}

// DiffRepoScan compares a freshly scanned NodeSet against the packages
// currently held by g, classifying every name into added / removed /
// modified / upgraded / downgraded, and merges the scan into g in place:
//   - a name found in both keeps is_tracked; is_reviewed is kept only if
//     the info CRC is unchanged (an edited upstream definition must be
//     re-reviewed);
//   - a name only in the old set is reported removed and dropped;
//   - a name only in the new set is reported added.
//
// Version comparison decides whether a shared name is merely "modified"
// (same version, different CRC) or an upgrade/downgrade.
func DiffRepoScan(g *Graph, scanned *NodeSet, crcOf func(*Package) (uint32, error)) ([]DiffEntry, error) {
	var diffs []DiffEntry
	matched := make(map[string]bool)

	merged := NewNodeSet()
	for _, np := range scanned.All() {
		crc, err := crcOf(np)
		if err != nil {
			return nil, fmt.Errorf("info crc for %s: %w", np.Name, err)
		}
		np.InfoCRC = crc

		if op := g.SBOPkgs.Find(np.Name); op != nil {
			matched[op.Name] = true
			np.Tracked = op.Tracked
			switch {
			case np.InfoCRC == op.InfoCRC:
				np.Reviewed = op.Reviewed
			default:
				switch c := CompareVersions(op.Version, np.Version); {
				case c == 0:
					diffs = append(diffs, DiffEntry{DiffModified, np.Name})
				case c < 0:
					diffs = append(diffs, DiffEntry{DiffUpgraded, np.Name})
				default:
					diffs = append(diffs, DiffEntry{DiffDowngraded, np.Name})
				}
			}
		} else {
			diffs = append(diffs, DiffEntry{DiffAdded, np.Name})
		}
		merged.Insert(np)
	}

	for _, op := range g.SBOPkgs.All() {
		if !matched[op.Name] {
			diffs = append(diffs, DiffEntry{DiffRemoved, op.Name})
		}
	}

	g.SBOPkgs = merged
	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].Kind != diffs[j].Kind {
			return diffs[i].Kind < diffs[j].Kind
		}
		return diffs[i].Name < diffs[j].Name
	})
	return diffs, nil
}
