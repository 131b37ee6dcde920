package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/builddb"
	"github.com/jgraha8/sbosqf-sub000/pkg"
)

func newRemoveCmd() *cobra.Command {
	opts := &sharedOptions{}
	c := &cobra.Command{
		Use:   "remove pkg...",
		Short: "Generate a removal queue (.sqf) for one or more installed packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args, opts)
		},
	}
	addSharedFlags(c, opts)
	return c
}

func runRemove(targets []string, opts *sharedOptions) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	// The remove command always walks reverse dependencies: a candidate
	// can only be dropped from the queue once every installed parent of
	// every installed descendant has been checked.
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

	removeOpts := pkg.RemoveQueueOptions{
		Deep:      opts.deep,
		Oracle:    opts.oracle(e.cfg),
		TagFilter: opts.tagFilter(e.cfg),
		OnRequired: func(child, parent string) {
			fmt.Fprintf(os.Stderr, "[required] %s <-- %s\n", child, parent)
		},
	}

	entries, err := pkg.GenerateRemoveQueue(e.graph, targets, removeOpts)
	if err != nil {
		return err
	}

	names := make([]string, len(entries))
	for i, ent := range entries {
		names[i] = ent.Name
	}
	if err := e.db.RecordRun(builddb.RunRecord{Kind: builddb.RunRemove, Targets: targets, Entries: names, StartedAt: time.Now()}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording remove run: %v\n", err)
	}

	return writeQueue(entries, opts, e.cfg.SlackpkgRepoName, targets[0], "-remove")
}
