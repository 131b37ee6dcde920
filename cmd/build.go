package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/builddb"
	"github.com/jgraha8/sbosqf-sub000/pkg"
	"github.com/jgraha8/sbosqf-sub000/util"
)

func newBuildCmd() *cobra.Command {
	opts := &sharedOptions{}
	c := &cobra.Command{
		Use:   "build pkg...",
		Short: "Generate a build queue (.sqf) for one or more packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args, opts)
		},
	}
	addSharedFlags(c, opts)
	return c
}

func runBuild(targets []string, opts *sharedOptions) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	info := pkg.NewFileInfoSource(e.cfg.SBOPkgRepo)
	loadOpts := pkg.LoaderOptions{Recursive: opts.recursive, Optional: true, ReadRequires: info.Requires}
	oracle := opts.oracle(e.cfg)
	tagFilter := opts.tagFilter(e.cfg)

	for _, t := range targets {
		node, err := e.graph.Search(t)
		if err != nil {
			return err
		}
		if node == nil {
			return fmt.Errorf("package not found: %s", t)
		}
		if err := pkg.LoadDep(e.graph, node, loadOpts); err != nil {
			return err
		}
	}

	// spec.md §4.5 step 2: a reverse-dependency build needs Parents
	// edges populated across the whole reachable chain, not just the
	// named targets, so every catalog entry's dependency file is loaded
	// too — restricted to installed entries under --installed-revdeps.
	if opts.revdeps {
		var onlyInstalled func(*pkg.Package) bool
		if opts.installedRevdeps {
			onlyInstalled = func(p *pkg.Package) bool {
				installed, _ := oracle.IsInstalled(p.Name, tagFilter)
				return installed
			}
		}
		if err := pkg.LoadAllDeps(e.graph, loadOpts, onlyInstalled); err != nil {
			return err
		}
	}

	queueOpts := pkg.BuildQueueOptions{
		Deep:           opts.deep,
		Revdeps:        opts.revdeps,
		CheckInstalled: opts.checkInstalled || opts.anyInstalled,
		TagFilter:      tagFilter,
		Oracle:         oracle,
		Review:         opts.review,
		DBDirty:        &e.dbDirty,
		Display: pagedDisplay(e, true),
		Prompt: func(p *pkg.Package) (byte, error) {
			return util.ReadChar(fmt.Sprintf("Add %s to REVIEWED ([Y]es / [n]o / [d]efault / [e]dit / [a]gain / [q]uit)? ", p.Name))
		},
		OnDefault: func(p *pkg.Package) error {
			return pkg.CreateDefaultDep(e.cfg.DepDir, p, info.Requires)
		},
		OnEdit: func(p *pkg.Package) error {
			return pkg.EditDep(p, e.cfg.DepDir, func(path string) error { return util.RunEditor(e.cfg.Editor, path) })
		},
		ReloadDep: func(p *pkg.Package) error {
			p.Required, p.BuildOpts = nil, nil
			return pkg.LoadDep(e.graph, p, loadOpts)
		},
		OnReviewed: func(p *pkg.Package) {
			if err := e.db.RecordReview(p.Name, p.InfoCRC, time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: recording review of %s: %v\n", p.Name, err)
			}
		},
	}

	entries, err := pkg.GenerateBuildQueue(e.graph, targets, queueOpts)
	if err != nil {
		return err
	}

	names := make([]string, len(entries))
	for i, ent := range entries {
		names[i] = ent.Name
	}
	if err := e.db.RecordRun(builddb.RunRecord{Kind: builddb.RunBuild, Targets: targets, Entries: names, StartedAt: time.Now()}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording build run: %v\n", err)
	}

	return writeQueue(entries, opts, e.cfg.SlackpkgRepoName, targets[0], "")
}

func writeQueue(entries []pkg.QueueEntry, opts *sharedOptions, repoName, primaryTarget, suffix string) error {
	if opts.outputMode == pkg.OutputStdout || opts.outputMode == pkg.OutputSlackpkg1 || opts.outputMode == pkg.OutputSlackpkg2 {
		return pkg.WriteQueue(os.Stdout, entries, opts.outputMode, repoName)
	}

	name := opts.outputName
	if name == "" {
		name = defaultOutputName(primaryTarget, suffix)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return pkg.WriteQueue(f, entries, opts.outputMode, repoName)
}
