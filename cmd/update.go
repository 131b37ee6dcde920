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

func newUpdateCmd() *cobra.Command {
	opts := &sharedOptions{}
	c := &cobra.Command{
		Use:   "update pkg...",
		Short: "Generate a build queue that brings packages, and anything depending on them, up to date",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args, opts)
		},
	}
	addSharedFlags(c, opts)
	return c
}

// runUpdate forces the same unbounded, reverse-dependency-aware
// traversal the original tool's run_update_command hard-codes: an update
// has to consider the whole graph, not just the directly named targets,
// to find every package that needs rebuilding because of them.
func runUpdate(targets []string, opts *sharedOptions) error {
	opts.revdeps = true
	opts.deep = true

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	info := pkg.NewFileInfoSource(e.cfg.SBOPkgRepo)
	loadOpts := pkg.LoaderOptions{Recursive: true, Optional: true, ReadRequires: info.Requires}
	if err := pkg.LoadAllDeps(e.graph, loadOpts, nil); err != nil {
		return err
	}
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

	planOpts := pkg.UpdatePlanOptions{
		RebuildDeps: opts.rebuildDeps,
		Oracle:      opts.oracle(e.cfg),
		TagFilter:   opts.tagFilter(e.cfg),
		Review:      opts.review,
		DBDirty:     &e.dbDirty,
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
		Diagnostic: func(kind pkg.UpdateKind, name string) {
			e.logger.Classified(kind.String(), name)
		},
		OnReviewed: func(p *pkg.Package) {
			if err := e.db.RecordReview(p.Name, p.InfoCRC, time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: recording review of %s: %v\n", p.Name, err)
			}
		},
	}

	entries, err := pkg.PlanUpdate(e.graph, targets, planOpts)
	if err != nil {
		return err
	}

	names := make([]string, len(entries))
	for i, ent := range entries {
		names[i] = ent.Name
	}
	if err := e.db.RecordRun(builddb.RunRecord{Kind: builddb.RunUpdate, Targets: targets, Entries: names, StartedAt: time.Now()}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording update run: %v\n", err)
	}

	return writeQueue(entries, opts, e.cfg.SlackpkgRepoName, targets[0], "")
}
