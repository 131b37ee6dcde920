package pkg

import (
	"fmt"
	"os"
)

// MakeMetaPkg synthesizes a new meta-package dependency file named
// metaName under depDir, requiring every name in pkgNames. It refuses an
// empty package list, and refuses a name that collides with an existing
// real SlackBuild package: a meta-package is purely a grouping inside
// depDir and must never shadow a catalog entry backed by an actual
// SlackBuild directory.
func MakeMetaPkg(g *Graph, metaName string, pkgNames []string) error {
	if len(pkgNames) == 0 {
		return fmt.Errorf("no packages provided for meta-package %s", metaName)
	}
	if g.SBOPkgs.Find(metaName) != nil {
		return fmt.Errorf("meta-package %s conflicts with an existing package", metaName)
	}

	var b []byte
	b = append(b, "METAPKG\nREQUIRED:\n"...)
	for _, name := range pkgNames {
		b = append(b, name...)
		b = append(b, '\n')
	}

	if err := os.WriteFile(DepFilePath(g.DepDir, metaName), b, 0644); err != nil {
		return err
	}
	g.MetaPkgs.Insert(&Package{Name: metaName, IsMeta: true})
	return nil
}
