// Package util collects the small process- and terminal-facing helpers
// shared by the command layer: confirmation prompts, the editor/pager
// child-process lifecycle, and the advisory lock that enforces this
// engine's single-process-at-a-time model over a dependency directory.
package util

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// AskYN prompts prompt and reads a single line from stdin, returning true
// for an empty answer or one starting with 'y'/'Y', false otherwise.
func AskYN(prompt string) bool {
	fmt.Printf("%s ", prompt)
	r := bufio.NewReader(os.Stdin)
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	return line == "" || line[0] == 'y' || line[0] == 'Y'
}

// ReadChar prompts prompt and reads a single response character from
// stdin, used by the interactive review gate's [Y/n/d/e/a/q] prompt. An
// empty line is reported back as 'y', matching the default-accept
// behavior of the original review prompt.
func ReadChar(prompt string) (byte, error) {
	fmt.Print(prompt)
	r := bufio.NewReader(os.Stdin)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return 0, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 'y', nil
	}
	return line[0], nil
}
