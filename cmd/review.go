package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/pkg"
	"github.com/jgraha8/sbosqf-sub000/util"
)

func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review pkg",
		Short: "Review a package's dependency file and mark it reviewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			info := pkg.NewFileInfoSource(e.cfg.SBOPkgRepo)
			node, err := e.graph.Search(args[0])
			if err != nil {
				return err
			}
			if node == nil {
				return fmt.Errorf("package not found: %s", args[0])
			}
			loadOpts := pkg.LoaderOptions{Recursive: false, Optional: true, ReadRequires: info.Requires}
			if err := pkg.LoadDep(e.graph, node, loadOpts); err != nil {
				return err
			}

			display := pagedDisplay(e, true)

			if node.Reviewed {
				return display(node)
			}

			outcome, dirty, err := pkg.Review(node, pkg.ReviewEnabled, display,
				func(p *pkg.Package) (byte, error) {
					return util.ReadChar(fmt.Sprintf("Add %s to REVIEWED ([Y]es / [n]o / [d]efault / [e]dit / [a]gain / [q]uit)? ", p.Name))
				},
				func(p *pkg.Package) error { return pkg.CreateDefaultDep(e.cfg.DepDir, p, info.Requires) },
				func(p *pkg.Package) error {
					return pkg.EditDep(p, e.cfg.DepDir, func(path string) error { return util.RunEditor(e.cfg.Editor, path) })
				},
			)
			if err != nil {
				return err
			}
			if dirty {
				e.dbDirty = true
				if err := e.db.RecordReview(node.Name, node.InfoCRC, time.Now()); err != nil {
					fmt.Fprintf(os.Stderr, "warning: recording review of %s: %v\n", node.Name, err)
				}
			}
			if outcome == pkg.ReviewRestart {
				fmt.Println("dependency file changed; re-run review to continue")
			}
			return nil
		},
	}
}
