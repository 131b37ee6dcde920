package pkg

import "fmt"

// ReviewMode selects how the review gate treats a dependency file that
// hasn't been marked reviewed yet. The modes form a priority order when
// more than one is requested on the same command line: Disabled beats
// AutoVerbose beats Auto beats Enabled (the default), matching the
// original tool's conflict-resolution rule so that, e.g., --auto-review
// and --disable-review together resolve to Disabled, with a warning
// naming the overridden mode, rather than erroring.
type ReviewMode int

const (
	ReviewEnabled ReviewMode = iota
	ReviewAuto
	ReviewAutoVerbose
	ReviewDisabled
)

func (m ReviewMode) priority() int { return int(m) }

// ResolveReviewMode applies the priority rule above, warning the caller
// (via warn, which may be nil) when the newly requested mode is
// overridden by, or overrides, one already selected.
func ResolveReviewMode(current, requested ReviewMode, warn func(string)) ReviewMode {
	if current.priority() == requested.priority() {
		return current
	}
	if requested.priority() > current.priority() {
		if warn != nil {
			warn(fmt.Sprintf("review mode %v overrides previously selected %v", requested, current))
		}
		return requested
	}
	if warn != nil {
		warn(fmt.Sprintf("review mode %v is overridden by previously selected %v", requested, current))
	}
	return current
}

func (m ReviewMode) String() string {
	switch m {
	case ReviewEnabled:
		return "enabled"
	case ReviewAuto:
		return "auto"
	case ReviewAutoVerbose:
		return "auto-verbose"
	case ReviewDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// ReviewOutcome is the result of gating one package behind the review
// protocol: Accepted means the build/update queue may include the
// package as-is; Rejected means the queue should proceed without marking
// it reviewed (the ENABLED prompt's 'n' answer); Restart means the
// dependency file changed under the caller (an edit or a reverted
// default) and whatever multi-pass planner called Review must redo its
// work from a clean graph.
//
// This replaces the original tool's single overloaded return code (whose
// sign carried success/failure and whose value carried the restart
// reason) with a plain three-way result, which is the natural shape for
// a Go caller to switch on.
type ReviewOutcome int

const (
	ReviewAccepted ReviewOutcome = iota
	ReviewRejected
	ReviewRestart
)

// ReviewPrompt is the interactive collaborator the review gate calls
// when ReviewMode is Enabled and the package hasn't been reviewed yet,
// after Review has shown the package through its display callback. It
// returns one of:
//
//	'y' - accept: mark reviewed, dirty the PKGDB
//	'n' - proceed unreviewed
//	'd' - overwrite with a synthesized default dependency file, then restart
//	'e' - spawn an editor on the dependency file, then restart
//	'a' - redisplay and ask again
//	'q' - terminate the whole command
type ReviewPrompt func(p *Package) (byte, error)

// Review runs the review gate for p under mode. display is called
// whenever the dependency file should be shown (AutoVerbose, and Enabled
// before each prompt); it may be nil for Disabled/Auto. prompt is only
// consulted in ReviewEnabled mode.
//
// On ReviewAccepted or ReviewRejected, dbDirty reports whether the
// caller must persist an is_reviewed change to the PKGDB.
func Review(p *Package, mode ReviewMode, display func(*Package) error, prompt ReviewPrompt,
	onDefault func(*Package) error, onEdit func(*Package) error) (ReviewOutcome, bool, error) {

	if mode == ReviewDisabled {
		return ReviewAccepted, false, nil
	}
	if p.Reviewed {
		return ReviewAccepted, false, nil
	}

	switch mode {
	case ReviewAuto:
		p.Reviewed = true
		return ReviewAccepted, true, nil

	case ReviewAutoVerbose:
		if display != nil {
			if err := display(p); err != nil {
				return ReviewAccepted, false, err
			}
		}
		p.Reviewed = true
		return ReviewAccepted, true, nil

	case ReviewEnabled:
		for {
			if display != nil {
				if err := display(p); err != nil {
					return ReviewAccepted, false, err
				}
			}
			ans, err := prompt(p)
			if err != nil {
				return ReviewAccepted, false, err
			}
			switch ans {
			case 'y', 'Y':
				p.Reviewed = true
				return ReviewAccepted, true, nil
			case 'n', 'N':
				return ReviewRejected, false, nil
			case 'd', 'D':
				if onDefault != nil {
					if err := onDefault(p); err != nil {
						return ReviewAccepted, false, err
					}
				}
				return ReviewRestart, false, nil
			case 'e', 'E':
				if onEdit != nil {
					if err := onEdit(p); err != nil {
						return ReviewAccepted, false, err
					}
				}
				return ReviewRestart, false, nil
			case 'a', 'A':
				continue
			case 'q', 'Q':
				return ReviewAccepted, false, ErrReviewQuit
			}
		}
	}

	return ReviewAccepted, false, nil
}
