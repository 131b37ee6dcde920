package util

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
)

// RunEditor spawns editorCmd (a space-tokenized command line, e.g. "vi"
// or "emacs -nw") on path and waits for it to exit. For the duration of
// the child process SIGINT and SIGQUIT are ignored in this process (so a
// Ctrl-C meant for the editor doesn't also kill the driving command) and
// SIGCHLD is drained by a no-op handler; both are restored before
// returning. This mirrors the narrow, child-process-scoped signal
// handling the original tool installs around fork/exec/waitpid — Go's
// os/exec already does the fork/exec/wait bookkeeping, so only the
// signal-ignoring bracket needs to be reproduced explicitly.
func RunEditor(editorCmd, path string) error {
	return runChild(editorCmd, path)
}

// RunPager spawns pagerCmd with content piped to its stdin, under the
// same signal-ignore bracket as RunEditor. An empty pagerCmd writes
// directly to stdout instead of spawning a child.
func RunPager(pagerCmd string, content []byte) error {
	if pagerCmd == "" {
		_, err := os.Stdout.Write(content)
		return err
	}
	return runChildWithInput(pagerCmd, content)
}

func tokenize(cmdLine string) ([]string, error) {
	tok := strings.Fields(cmdLine)
	if len(tok) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return tok, nil
}

func withIgnoredSignals(fn func() error) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGCHLD)
	defer signal.Stop(sig)
	go func() {
		for range sig {
			// Swallowed: the spawned child owns the terminal for the
			// duration of this call.
		}
	}()
	return fn()
}

func runChild(cmdLine, arg string) error {
	tok, err := tokenize(cmdLine)
	if err != nil {
		return err
	}
	args := append(append([]string{}, tok[1:]...), arg)
	return withIgnoredSignals(func() error {
		cmd := exec.Command(tok[0], args...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		return cmd.Run()
	})
}

func runChildWithInput(cmdLine string, content []byte) error {
	tok, err := tokenize(cmdLine)
	if err != nil {
		return err
	}
	return withIgnoredSignals(func() error {
		cmd := exec.Command(tok[0], tok[1:]...)
		cmd.Stdin = bytes.NewReader(content)
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
		return cmd.Run()
	})
}
