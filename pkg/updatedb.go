package pkg

// UpdateDB rescans repoRoot, diffs the result against g's current
// catalog (merging the scan into g as a side effect; see
// DiffRepoScan), and synthesizes a default dependency file for any
// package that still doesn't have one. Callers are responsible for
// persisting g via WritePKGDB afterward.
func UpdateDB(g *Graph, repoRoot string, crcOf func(*Package) (uint32, error),
	readRequires func(sboDir string) ([]string, error)) ([]DiffEntry, error) {

	scanned, err := ScanRepo(repoRoot)
	if err != nil {
		return nil, err
	}
	diffs, err := DiffRepoScan(g, scanned, crcOf)
	if err != nil {
		return nil, err
	}
	for _, p := range g.SBOPkgs.All() {
		if DepFileExists(g.DepDir, p.Name) {
			continue
		}
		if err := CreateDefaultDep(g.DepDir, p, readRequires); err != nil {
			return nil, err
		}
	}
	return diffs, nil
}
