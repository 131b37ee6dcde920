package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/pkg"
	"github.com/jgraha8/sbosqf-sub000/util"
)

func newMakeMetaCmd() *cobra.Command {
	var output string
	c := &cobra.Command{
		Use:   "make-meta pkg...",
		Short: "Create a meta-package from a set of existing packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output/-o is required")
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if pkg.DepFileExists(e.cfg.DepDir, output) {
				if !util.AskYN(fmt.Sprintf("meta-package %s already exists; overwrite? [Y/n]", output)) {
					return fmt.Errorf("meta-package %s not overwritten", output)
				}
			}

			return pkg.MakeMetaPkg(e.graph, output, args)
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "name of the meta-package to create")
	return c
}
