package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/pkg"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search substring",
		Short: "Search the catalog (including meta-packages) for a name substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := pkg.DiscoverMetaPackages(e.graph); err != nil {
				return err
			}
			for _, r := range pkg.Search(e.graph, args[0]) {
				fmt.Printf("%-30s %s\n", r.Name, r.DisplayPath)
			}
			return nil
		},
	}
}
