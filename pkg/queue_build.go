package pkg

// BuildQueueOptions configures GenerateBuildQueue.
type BuildQueueOptions struct {
	Deep           bool // unbounded traversal depth instead of direct deps only
	Revdeps        bool
	CheckInstalled bool
	TagFilter      TagFilter
	Oracle         Oracle // required when CheckInstalled is set

	Review    ReviewMode
	Display   func(*Package) error
	Prompt    ReviewPrompt
	OnDefault func(*Package) error
	OnEdit    func(*Package) error
	ReloadDep func(*Package) error // re-parses p's dependency file in place, after 'd' or 'e'
	DBDirty   *bool                // set true whenever Review dirties the PKGDB

	// OnReviewed, if set, is called for every node whose Review call sets
	// is_reviewed for the first time, so a caller can persist a review
	// history entry alongside the dirtied PKGDB flag.
	OnReviewed func(*Package)
}

// GenerateBuildQueue computes the build queue for one or more targets: the
// post-order (leaves first) closure of each target's dependencies, with
// meta-packages elided from the output, already-installed packages
// skipped when CheckInstalled is set, and every still-unreviewed
// dependency gated behind the review protocol.
//
// All targets share one output list and one "already decided" set, so a
// package pulled in by two different targets is only emitted, and only
// reviewed, once. If a review answer edits or reverts a dependency file
// mid-walk, the whole computation restarts from a clean graph coloring:
// the edited file may have changed the very edges the walk is iterating
// over, so there is no way to resume in place without risking a stale
// traversal.
func GenerateBuildQueue(g *Graph, targets []string, opts BuildQueueOptions) ([]QueueEntry, error) {
	for {
		entries, restarted, err := tryBuildQueue(g, targets, opts)
		if err != nil {
			return nil, err
		}
		if !restarted {
			return entries, nil
		}
	}
}

func tryBuildQueue(g *Graph, targets []string, opts BuildQueueOptions) ([]QueueEntry, bool, error) {
	var entries []QueueEntry
	emitted := map[string]bool{}
	decided := map[string]ReviewOutcome{}

	flags := IterFlags(0)
	if opts.Revdeps {
		flags |= IterRevdeps
	}
	// Direct (non-deep) builds reach one hop past the target: itself plus
	// its immediate dependencies.
	maxDist := 1
	if opts.Deep {
		maxDist = -1
	}

	targetSet := make(map[string]bool, len(targets))
	for _, t := range targets {
		targetSet[t] = true
	}

	for _, target := range targets {
		it, node, err := Begin(g, target, flags, maxDist)
		if err != nil {
			return nil, false, err
		}
		for node != nil {
			restart, err := processBuildNode(g, node, opts, targetSet, emitted, decided, &entries)
			if err != nil {
				return nil, false, err
			}
			if restart {
				return nil, true, nil
			}
			node, _, err = it.Next()
			if err != nil {
				return nil, false, err
			}
		}
	}

	// spec.md §4.5 step 6: a Parents walk emits each dependent before the
	// packages it depends on, so a reverse-dependency build reverses that
	// order, putting every name ahead of anything that depends on it just
	// as a forward build does.
	if opts.Revdeps {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries, false, nil
}

func processBuildNode(g *Graph, node *Package, opts BuildQueueOptions, targetSet map[string]bool,
	emitted map[string]bool, decided map[string]ReviewOutcome, entries *[]QueueEntry) (bool, error) {

	if node.IsMeta {
		return false, nil
	}
	if emitted[node.Name] {
		return false, nil
	}
	// A node explicitly named on the command line is built even if it's
	// already installed; only incidental dependencies get skipped.
	if opts.CheckInstalled && opts.Oracle != nil && !targetSet[node.Name] {
		installed, err := opts.Oracle.IsInstalled(node.Name, opts.TagFilter)
		if err != nil {
			return false, err
		}
		if installed {
			return false, nil
		}
	}

	if outcome, ok := decided[node.Name]; ok {
		if outcome == ReviewRejected {
			return false, nil
		}
	} else if opts.Review != ReviewDisabled && !node.Reviewed {
		outcome, dirty, err := Review(node, opts.Review, opts.Display, opts.Prompt, opts.OnDefault, opts.OnEdit)
		if err != nil {
			return false, err
		}
		if dirty && opts.DBDirty != nil {
			*opts.DBDirty = true
		}
		if dirty && opts.OnReviewed != nil {
			opts.OnReviewed(node)
		}
		decided[node.Name] = outcome
		switch outcome {
		case ReviewRejected:
			return false, nil
		case ReviewRestart:
			if opts.ReloadDep != nil {
				if err := opts.ReloadDep(node); err != nil {
					return false, err
				}
			}
			return true, nil
		}
	}

	emitted[node.Name] = true
	*entries = append(*entries, QueueEntry{Name: node.Name, BuildOpts: node.BuildOpts})
	return false, nil
}
