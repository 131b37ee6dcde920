package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/pkg"
	"github.com/jgraha8/sbosqf-sub000/util"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit pkg",
		Short: "Edit a package's dependency file and mark it unreviewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			node, err := e.graph.Search(args[0])
			if err != nil {
				return err
			}
			if node == nil {
				return fmt.Errorf("package not found: %s", args[0])
			}
			if !pkg.DepFileExists(e.cfg.DepDir, node.Name) {
				return fmt.Errorf("no dependency file for %s", node.Name)
			}
			if err := pkg.EditDep(node, e.cfg.DepDir, func(path string) error {
				return util.RunEditor(e.cfg.Editor, path)
			}); err != nil {
				return err
			}
			e.dbDirty = true
			return nil
		},
	}
}
