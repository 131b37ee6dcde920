package pkg

// UpdatePlanOptions configures PlanUpdate.
type UpdatePlanOptions struct {
	// RebuildDeps also queues (as DEP_REBUILD) every installed dependency
	// whose installed version equals its catalog version. It does not
	// affect reverse dependencies: those are rebuilt at an unchanged
	// version whether or not it is set.
	RebuildDeps bool

	Oracle    Oracle
	TagFilter TagFilter

	Review    ReviewMode
	Display   func(*Package) error
	Prompt    ReviewPrompt
	OnDefault func(*Package) error
	OnEdit    func(*Package) error
	ReloadDep func(*Package) error
	DBDirty   *bool
	// OnReviewed, if set, is called for every build-list node whose Review
	// call sets is_reviewed for the first time.
	OnReviewed func(*Package)

	// Diagnostic, if set, is called once per surviving build-list entry
	// (including downgrades, before they are stripped) so the caller can
	// print the classification banner the original tool shows.
	Diagnostic func(kind UpdateKind, name string)
}

// PlanUpdate computes the set of packages that need building to bring
// targets, and anything that depends on them, up to date with the
// catalog.
//
// The algorithm is a fix-point over two alternating passes:
//
//   - the dependency walk descends from each package awaiting
//     classification through its own Required edges, labeling every
//     node it finds UPDATE (a target itself), DEP_ADDED (newly required,
//     not installed at all), DEP_UPDATE / DEP_DOWNGRADE (installed but at
//     a different version), or DEP_REBUILD (same version, rebuild
//     requested anyway);
//   - the reverse-dependency walk takes one step up from each freshly
//     classified package to its installed parents, labeling any parent
//     that itself needs a newer or rebuilt version REVDEP_UPDATE /
//     REVDEP_REBUILD / REVDEP_DOWNGRADE, and feeding REVDEP_UPDATE /
//     REVDEP_REBUILD parents back into the dependency walk so their own
//     dependencies get a chance to matter too.
//
// Once both queues drain, every accumulated build-list entry is gated
// through the review protocol. Accepting or rejecting a package leaves
// the plan as computed; editing or reverting one means the plan may now
// be wrong (the edited dependency file could add or drop edges), so the
// whole computation restarts from a freshly cleared graph.
//
// Downgrades are reported through Diagnostic but never included in the
// returned queue entries: this engine never proposes installing
// something older than what's already present.
func PlanUpdate(g *Graph, targets []string, opts UpdatePlanOptions) ([]QueueEntry, error) {
	seeds, err := selectUpdatedPkgs(g, targets, opts)
	if err != nil {
		return nil, err
	}

	for {
		buildList, restarted, err := tryPlanUpdate(g, seeds, opts)
		if err != nil {
			return nil, err
		}
		if restarted {
			continue
		}

		var entries []QueueEntry
		for _, node := range buildList {
			kind := g.Classification(node)
			if opts.Diagnostic != nil {
				opts.Diagnostic(kind, node.Name)
			}
			if kind.IsDowngrade() {
				continue
			}
			entries = append(entries, QueueEntry{Name: node.Name, BuildOpts: node.BuildOpts})
		}
		return entries, nil
	}
}

// selectUpdatedPkgs is Phase A: every named target whose catalog version
// is newer than what's installed seeds the fix-point loop.
func selectUpdatedPkgs(g *Graph, targets []string, opts UpdatePlanOptions) ([]*Package, error) {
	var seeds []*Package
	for _, name := range targets {
		node, err := g.Search(name)
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nil, ErrPackageNotFound
		}
		installedVersion, installed, err := InstalledVersion(opts.Oracle, name)
		if err != nil {
			return nil, err
		}
		if !installed || CompareVersions(installedVersion, node.Version) < 0 {
			seeds = append(seeds, node)
		}
	}
	return seeds, nil
}

func tryPlanUpdate(g *Graph, seeds []*Package, opts UpdatePlanOptions) ([]*Package, bool, error) {
	g.ClearMarkers()
	g.ResetUpdate()

	pkgList := append([]*Package(nil), seeds...)
	var updateList []*Package
	var buildList []*Package

	for len(pkgList) > 0 || len(updateList) > 0 {
		if len(pkgList) > 0 {
			p := pkgList[0]
			pkgList = pkgList[1:]
			if err := walkDependencies(g, p, seeds, opts, &buildList, &pkgList, &updateList); err != nil {
				return nil, false, err
			}
		}
		if len(updateList) > 0 {
			p := updateList[0]
			updateList = updateList[1:]
			if err := walkRevdeps(g, p, opts, &buildList, &pkgList, &updateList); err != nil {
				return nil, false, err
			}
		}
	}

	for _, node := range buildList {
		if !node.Reviewed && opts.Review != ReviewDisabled {
			outcome, dirty, err := Review(node, opts.Review, opts.Display, opts.Prompt, opts.OnDefault, opts.OnEdit)
			if err != nil {
				return nil, false, err
			}
			if dirty && opts.DBDirty != nil {
				*opts.DBDirty = true
			}
			if dirty && opts.OnReviewed != nil {
				opts.OnReviewed(node)
			}
			if outcome == ReviewRestart {
				if opts.ReloadDep != nil {
					if err := opts.ReloadDep(node); err != nil {
						return nil, false, err
					}
				}
				return nil, true, nil
			}
		}
	}

	return buildList, false, nil
}

func setClassification(g *Graph, p *Package, kind UpdateKind) {
	g.state(p).update.kind = kind
}

func appendUnique(list *[]*Package, p *Package) {
	for _, q := range *list {
		if q == p {
			return
		}
	}
	*list = append(*list, p)
}

func isSeed(seeds []*Package, p *Package) bool {
	for _, s := range seeds {
		if s == p {
			return true
		}
	}
	return false
}

func walkDependencies(g *Graph, p *Package, seeds []*Package, opts UpdatePlanOptions,
	buildList, pkgList *[]*Package, updateList *[]*Package) error {

	it, cur, err := Begin(g, p.Name, IterPreserveColor, -1)
	if err != nil {
		return err
	}
	for cur != nil {
		if cur.IsMeta {
			var nerr error
			cur, _, nerr = it.Next()
			if nerr != nil {
				return nerr
			}
			continue
		}

		existing := g.Classification(cur)
		switch {
		case existing == UpdateRevdepUpdate || existing == UpdateRevdepRebuild:
			appendUnique(buildList, cur)
		case existing != UpdateNone:
			// First classification wins; nothing further to do.
		case isSeed(seeds, cur):
			setClassification(g, cur, UpdateUpdate)
			appendUnique(buildList, cur)
			appendUnique(updateList, cur)
		default:
			installedVersion, installed, verr := InstalledVersion(opts.Oracle, cur.Name)
			if verr != nil {
				return verr
			}
			switch {
			case !installed:
				setClassification(g, cur, UpdateDepAdded)
				appendUnique(buildList, cur)
			default:
				switch c := CompareVersions(installedVersion, cur.Version); {
				case c < 0:
					setClassification(g, cur, UpdateDepUpdate)
					appendUnique(buildList, cur)
					appendUnique(updateList, cur)
				case c > 0:
					setClassification(g, cur, UpdateDepDowngrade)
					appendUnique(buildList, cur)
				default:
					if opts.RebuildDeps {
						setClassification(g, cur, UpdateDepRebuild)
						appendUnique(buildList, cur)
					}
				}
			}
		}

		cur, _, err = it.Next()
		if err != nil {
			return err
		}
	}
	return nil
}

func walkRevdeps(g *Graph, p *Package, opts UpdatePlanOptions,
	buildList, pkgList, updateList *[]*Package) error {

	it, cur, err := Begin(g, p.Name, IterRevdeps|IterForw|IterPreserveColor, 1)
	if err != nil {
		return err
	}
	for cur != nil {
		if cur == p || cur.IsMeta {
			cur, _, err = it.Next()
			if err != nil {
				return err
			}
			continue
		}
		if g.Classification(cur) != UpdateNone {
			cur, _, err = it.Next()
			if err != nil {
				return err
			}
			continue
		}

		installedVersion, installed, ierr := InstalledVersion(opts.Oracle, cur.Name)
		if ierr != nil {
			return ierr
		}
		if installed {
			switch c := CompareVersions(installedVersion, cur.Version); {
			case c < 0:
				setClassification(g, cur, UpdateRevdepUpdate)
				appendUnique(buildList, cur)
				appendUnique(updateList, cur)
				appendUnique(pkgList, cur)
			case c > 0:
				setClassification(g, cur, UpdateRevdepDowngrade)
				appendUnique(buildList, cur)
			default:
				// Unlike the forward DEP_REBUILD case, a reverse dependency
				// at an unchanged version is rebuilt unconditionally: its
				// child's version did change, so it needs a rebuild against
				// the refreshed tree regardless of RebuildDeps.
				setClassification(g, cur, UpdateRevdepRebuild)
				appendUnique(buildList, cur)
				appendUnique(pkgList, cur)
			}
		}

		cur, _, err = it.Next()
		if err != nil {
			return err
		}
	}
	return nil
}
