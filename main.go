// Command sbopkg-dep2sqf generates build, remove, and update queues for a
// SlackBuilds.org-style source repository by resolving each package's
// dependency file into a graph and walking it in the order a build
// system would actually need.
package main

import (
	"fmt"
	"os"

	"github.com/jgraha8/sbosqf-sub000/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
