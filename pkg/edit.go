package pkg

// EditDep opens p's dependency file in an external editor via spawn (the
// process-spawning collaborator; see util.RunEditor for the concrete
// os/exec implementation with its narrow signal-ignore lifecycle around
// the child process) and, on success, marks p as needing re-review: an
// edited dependency file may have changed what the package requires, so
// whatever review decision was previously recorded no longer applies.
func EditDep(p *Package, depDir string, spawn func(path string) error) error {
	if err := spawn(DepFilePath(depDir, p.Name)); err != nil {
		return err
	}
	p.Reviewed = false
	return nil
}
