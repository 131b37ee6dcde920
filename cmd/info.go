package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/pkg"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info pkg",
		Short: "Display a package's README and .info file",
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
			return pkg.ShowInfo(os.Stdout, e.cfg.SBOPkgRepo, e.cfg.DepDir, node, false)
		},
	}
}
