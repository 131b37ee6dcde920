// Package cmd wires the cobra command surface onto the dependency-graph
// engine in package pkg: one subcommand per original operation
// (build/remove/update/updatedb/check-updates/review/info/edit/search/
// make-meta), sharing a root-level PKGDB load, an oracle selection, and
// the advisory process lock.
package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jgraha8/sbosqf-sub000/builddb"
	"github.com/jgraha8/sbosqf-sub000/config"
	"github.com/jgraha8/sbosqf-sub000/log"
	"github.com/jgraha8/sbosqf-sub000/pkg"
	"github.com/jgraha8/sbosqf-sub000/util"
)

// sharedOptions holds the flags and review/check-installed selection
// common to build, remove, and update, mirroring the original options
// struct these three commands all populate from the same getopt table.
type sharedOptions struct {
	deep             bool
	revdeps          bool
	installedRevdeps bool
	recursive        bool
	rebuildDeps      bool
	allPackages      bool
	checkInstalled   bool
	anyInstalled     bool
	repoOracle       bool
	outputMode       pkg.OutputMode
	outputName       string
	review           pkg.ReviewMode
}

func addSharedFlags(c *cobra.Command, o *sharedOptions) {
	o.recursive = true
	o.review = pkg.ReviewEnabled

	c.Flags().BoolVarP(&o.deep, "deep", "d", false, "traverse the full transitive dependency closure")
	c.Flags().BoolVarP(&o.revdeps, "revdeps", "p", false, "also traverse reverse dependencies")
	c.Flags().BoolVarP(&o.installedRevdeps, "installed-revdeps", "P", false, "traverse reverse dependencies among installed packages only (implies --revdeps)")
	c.Flags().BoolVarP(&o.rebuildDeps, "rebuild-deps", "r", false, "also queue installed dependencies whose version is unchanged")
	c.Flags().BoolVarP(&o.allPackages, "all-packages", "z", false, "accepted but has no effect: commands operate only on the named packages")
	c.Flags().BoolVarP(&o.checkInstalled, "check-installed", "c", false, "skip packages already installed with the configured tag")
	c.Flags().BoolVarP(&o.anyInstalled, "check-any-installed", "C", false, "skip packages already installed under any tag")
	c.Flags().BoolVarP(&o.repoOracle, "slackpkg-repo", "R", false, "use the slackpkg repository pkglist as the installed-package oracle instead of the local package database")

	var auto, autoVerbose, disableReview bool
	c.Flags().BoolVarP(&auto, "auto-review", "a", false, "mark unreviewed dependencies reviewed automatically, without displaying them")
	c.Flags().BoolVarP(&autoVerbose, "auto-review-verbose", "A", false, "mark unreviewed dependencies reviewed automatically, displaying each one")
	c.Flags().BoolVarP(&disableReview, "disable-review", "i", false, "skip the review gate entirely")

	var noRecursive bool
	c.Flags().BoolVarP(&noRecursive, "no-recursive", "n", false, "don't descend into each dependency's own dependency file")

	var stdout bool
	c.Flags().BoolVarP(&stdout, "stdout", "l", false, "print the queue as a single space-joined line instead of a file")
	var slackpkgList int
	c.Flags().IntVarP(&slackpkgList, "list-slackpkg", "L", 0, "print the queue in slackpkg format 1 (REPO:name) or 2 (name:REPO)")
	c.Flags().StringVarP(&o.outputName, "output", "o", "", "output file name (default: <target>.sqf or <target>-remove.sqf)")

	c.PreRunE = func(*cobra.Command, []string) error {
		if noRecursive {
			o.recursive = false
		}
		if o.installedRevdeps {
			o.revdeps = true
		}

		// spec.md §6: the review flags form a priority order
		// (disable > auto-verbose > auto > enabled); only warn about a
		// flag losing out when more than one was actually given, never
		// against the unset default.
		var given []pkg.ReviewMode
		if auto {
			given = append(given, pkg.ReviewAuto)
		}
		if autoVerbose {
			given = append(given, pkg.ReviewAutoVerbose)
		}
		if disableReview {
			given = append(given, pkg.ReviewDisabled)
		}
		o.review = pkg.ReviewEnabled
		if len(given) > 0 {
			o.review = given[0]
			for _, g := range given[1:] {
				o.review = pkg.ResolveReviewMode(o.review, g, func(msg string) {
					fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
				})
			}
		}

		// spec.md §6: -l, -L, and -o are mutually exclusive.
		outputFlags := 0
		if stdout {
			outputFlags++
		}
		if slackpkgList != 0 {
			outputFlags++
		}
		if o.outputName != "" {
			outputFlags++
		}
		if outputFlags > 1 {
			return fmt.Errorf("--stdout/-l, --list-slackpkg/-L, and --output/-o are mutually exclusive")
		}

		switch {
		case stdout:
			o.outputMode = pkg.OutputStdout
		case slackpkgList == 1:
			o.outputMode = pkg.OutputSlackpkg1
		case slackpkgList == 2:
			o.outputMode = pkg.OutputSlackpkg2
		case slackpkgList != 0:
			return fmt.Errorf("--list-slackpkg/-L must be 1 or 2, got %d", slackpkgList)
		default:
			o.outputMode = pkg.OutputFile
		}
		return nil
	}
}

func (o *sharedOptions) tagFilter(cfg *config.Config) pkg.TagFilter {
	if o.anyInstalled {
		return pkg.AnyTag
	}
	return pkg.TagFilter(cfg.SBOTag)
}

func (o *sharedOptions) oracle(cfg *config.Config) pkg.Oracle {
	if o.repoOracle {
		return pkg.NewSlackpkgRepoOracle(pkg.DefaultSlackpkgPkglist, cfg.SlackpkgRepoName)
	}
	return pkg.NewPackagesOracle("/var/log/packages")
}

// env bundles the resources every subcommand needs: loaded config, the
// diagnostic logger, the build-history database, and the process lock.
// Built by loadEnv at the start of each subcommand's RunE and torn down
// by close when that RunE returns.
type env struct {
	cfg     *config.Config
	logger  *log.Logger
	db      *builddb.DB
	lock    *util.Lock
	graph   *pkg.Graph
	pkgdb   string
	dbDirty bool
}

var repoFlag, configFlag string

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sbopkg-dep2sqf",
		Short:         "Generate build, remove, and update queues for a SlackBuilds.org repository",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFlag, "config-file", "", "path to the configuration file (default $HOME/.sbopkg-dep2sqf)")
	root.PersistentFlags().StringVar(&repoFlag, "sbopkg-repo", "", "override the configured SlackBuilds repository path")

	root.AddCommand(
		newBuildCmd(),
		newRemoveCmd(),
		newUpdateCmd(),
		newUpdateDBCmd(),
		newCheckUpdatesCmd(),
		newReviewCmd(),
		newInfoCmd(),
		newEditCmd(),
		newSearchCmd(),
		newMakeMetaCmd(),
	)
	return root
}

func loadEnv() (*env, error) {
	var cfg *config.Config
	var err error
	if configFlag != "" {
		cfg, err = config.LoadFrom(configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if repoFlag != "" {
		cfg.SBOPkgRepo = repoFlag
	}

	if err := os.MkdirAll(cfg.DepDir, 0755); err != nil {
		return nil, fmt.Errorf("create dependency directory %s: %w", cfg.DepDir, err)
	}

	lock, err := util.AcquireLock(cfg.DepDir)
	if err != nil {
		return nil, err
	}

	logger, err := log.New("")
	if err != nil {
		lock.Release()
		return nil, err
	}

	db, err := builddb.Open(filepath.Join(cfg.DepDir, ".builddb"))
	if err != nil {
		lock.Release()
		return nil, err
	}

	pkgdbPath := filepath.Join(cfg.DepDir, ".pkgdb")
	var graph *pkg.Graph
	if _, statErr := os.Stat(pkgdbPath); statErr == nil {
		graph, err = pkg.LoadPKGDB(pkgdbPath, cfg.DepDir)
	} else {
		graph = pkg.NewGraph(cfg.DepDir)
	}
	if err != nil {
		db.Close()
		lock.Release()
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, db: db, lock: lock, graph: graph, pkgdb: pkgdbPath}, nil
}

func (e *env) close() {
	if e.dbDirty {
		if err := pkg.WritePKGDB(e.pkgdb, e.graph); err != nil {
			fmt.Fprintf(os.Stderr, "error: writing PKGDB: %v\n", err)
		}
	}
	e.db.Close()
	e.logger.Close()
	e.lock.Release()
}

func defaultOutputName(target, suffix string) string { return target + suffix + ".sqf" }

// pagedDisplay renders ShowInfo's bundle (README, .info, dependency
// file) into memory and hands it to the configured pager, the same
// bundle the review gate's AUTO_VERBOSE/ENABLED modes show before
// prompting.
func pagedDisplay(e *env, includeDep bool) func(*pkg.Package) error {
	return func(p *pkg.Package) error {
		var buf bytes.Buffer
		if err := pkg.ShowInfo(&buf, e.cfg.SBOPkgRepo, e.cfg.DepDir, p, includeDep); err != nil {
			return err
		}
		return util.RunPager(e.cfg.Pager, buf.Bytes())
	}
}
