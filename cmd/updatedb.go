package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/pkg"
)

func newUpdateDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "updatedb",
		Short: "Rescan the repository and refresh the PKGDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			info := pkg.NewFileInfoSource(e.cfg.SBOPkgRepo)
			diffs, err := pkg.UpdateDB(e.graph, e.cfg.SBOPkgRepo,
				func(p *pkg.Package) (uint32, error) { return pkg.CRCOf(info, p) },
				info.Requires)
			if err != nil {
				return err
			}
			for _, d := range diffs {
				fmt.Printf("[%s] %s\n", d.Kind, d.Name)
			}
			e.dbDirty = true
			return nil
		},
	}
}
