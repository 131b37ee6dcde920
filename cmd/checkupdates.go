package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/pkg"
)

func newCheckUpdatesCmd() *cobra.Command {
	var deep, rebuildDeps, anyInstalled bool
	c := &cobra.Command{
		Use:   "check-updates pkg...",
		Short: "Report which installed packages would be affected by an update, without generating a queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			for _, t := range args {
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

			tagFilter := pkg.TagFilter(e.cfg.SBOTag)
			if anyInstalled {
				tagFilter = pkg.AnyTag
			}

			planOpts := pkg.UpdatePlanOptions{
				RebuildDeps: rebuildDeps,
				Oracle:      pkg.NewPackagesOracle("/var/log/packages"),
				TagFilter:   tagFilter,
				Review:      pkg.ReviewDisabled,
				Diagnostic: func(kind pkg.UpdateKind, name string) {
					fmt.Printf("[%-2s] %s\n", kind, name)
				},
			}
			_, err = pkg.PlanUpdate(e.graph, args, planOpts)
			return err
		},
	}
	c.Flags().BoolVarP(&deep, "deep", "d", true, "unused; check-updates always walks the full closure")
	c.Flags().BoolVarP(&rebuildDeps, "rebuild-deps", "r", false, "also report dependencies that would be rebuilt without a version change")
	c.Flags().BoolVarP(&anyInstalled, "check-any-installed", "C", false, "match any installed tag instead of the configured one")
	return c
}
