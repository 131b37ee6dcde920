// Package pkg implements the dependency-graph engine: the package catalog,
// the dependency-file parser and graph loader, the traversal iterator, the
// build/remove/update queue generators, and the review gate.
package pkg

import "fmt"

// Sentinel errors, checked with errors.Is().
var (
	// ErrCycleDetected is returned by the loader or the iterator when a
	// circular dependency is found.
	ErrCycleDetected = fmt.Errorf("cyclic dependency")

	// ErrPackageNotFound is returned when a named package does not exist
	// in either half of the catalog.
	ErrPackageNotFound = fmt.Errorf("package not found in catalog")

	// ErrDepFileMalformed is returned when a dependency file contains
	// content before any recognized block marker.
	ErrDepFileMalformed = fmt.Errorf("malformed dependency file")

	// ErrReviewQuit is returned when the user answers [q]uit at a review
	// prompt. The command runner treats this as process termination.
	ErrReviewQuit = fmt.Errorf("review cancelled by user")

	// ErrNoSBODir is returned when a default dependency file cannot be
	// synthesized because the package has no repository directory.
	ErrNoSBODir = fmt.Errorf("package has no repository directory to synthesize a dependency file from")
)

// CycleError names the two packages whose edge closed a cycle.
type CycleError struct {
	Parent string
	Child  string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency found: %s <--> %s", e.Parent, e.Child)
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// PKGDBParseError reports a malformed PKGDB record.
type PKGDBParseError struct {
	Line int
	Text string
}

func (e *PKGDBParseError) Error() string {
	return fmt.Sprintf("malformed PKGDB record at line %d: %q", e.Line, e.Text)
}

// DepFileError reports a malformed dependency file.
type DepFileError struct {
	Path string
	Line int
}

func (e *DepFileError) Error() string {
	return fmt.Sprintf("%s:%d: badly formatted dependency file", e.Path, e.Line)
}

func (e *DepFileError) Unwrap() error { return ErrDepFileMalformed }
