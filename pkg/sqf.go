package pkg

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// OutputMode selects how a generated queue is rendered.
type OutputMode int

const (
	// OutputFile writes one package name per line, followed by
	// " | opt1 opt2 ..." when the package carries build options.
	OutputFile OutputMode = iota
	// OutputStdout writes every name on a single space-joined line.
	OutputStdout
	// OutputSlackpkg1 writes every "REPO:name" token on a single
	// space-joined line.
	OutputSlackpkg1
	// OutputSlackpkg2 writes every "name:REPO" token on a single
	// space-joined line.
	OutputSlackpkg2
)

// QueueEntry is one emitted line of a generated queue: a package name
// plus whatever build options its dependency file recorded.
type QueueEntry struct {
	Name      string
	BuildOpts []string
}

// WriteQueue renders entries to w in mode, using repoName for the two
// slackpkg column formats.
func WriteQueue(w io.Writer, entries []QueueEntry, mode OutputMode, repoName string) error {
	bw := bufio.NewWriter(w)
	switch mode {
	case OutputStdout:
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
		}
		if _, err := fmt.Fprintln(bw, strings.Join(names, " ")); err != nil {
			return err
		}
	case OutputSlackpkg1:
		tokens := make([]string, len(entries))
		for i, e := range entries {
			tokens[i] = fmt.Sprintf("%s:%s", repoName, e.Name)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(tokens, " ")); err != nil {
			return err
		}
	case OutputSlackpkg2:
		tokens := make([]string, len(entries))
		for i, e := range entries {
			tokens[i] = fmt.Sprintf("%s:%s", e.Name, repoName)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(tokens, " ")); err != nil {
			return err
		}
	default: // OutputFile
		for _, e := range entries {
			if len(e.BuildOpts) == 0 {
				if _, err := fmt.Fprintln(bw, e.Name); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(bw, "%s | %s\n", e.Name, strings.Join(e.BuildOpts, " ")); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
