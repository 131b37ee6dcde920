package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	border1 = "================================================================================"
	border2 = "--------------------------------------------------------------------------------"
)

// ShowInfo writes p's README and .info file to w, bracketed the way the
// interactive review display does, optionally appending the current
// contents of its dependency file. repoRoot joined with p.SBODir locates
// the SlackBuild directory; includeDep is false for the plain "info"
// command and true for the review display.
func ShowInfo(w io.Writer, repoRoot, depDir string, p *Package, includeDep bool) error {
	if p.SBODir == "" {
		return fmt.Errorf("%s has no repository directory", p.Name)
	}
	sboDir := filepath.Join(repoRoot, p.SBODir)

	readme, err := os.ReadFile(filepath.Join(sboDir, "README"))
	if err != nil {
		return err
	}
	info, err := os.ReadFile(filepath.Join(sboDir, p.Name+".info"))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s\n%s\n%s\n\n%s\n%s\nREADME\n%s\n%s\n\n", border1, p.Name, border1, info, border2, border2, readme)

	if includeDep {
		fmt.Fprintf(w, "%s\nDependency File\n%s\n", border2, border2)
		dep, err := os.ReadFile(DepFilePath(depDir, p.Name))
		if err != nil {
			fmt.Fprintf(w, "%s dependency file not found\n\n", p.Name)
		} else {
			fmt.Fprintf(w, "%s\n\n", dep)
		}
	}
	return nil
}
