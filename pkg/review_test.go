package pkg

import "testing"

func TestResolveReviewModePriority(t *testing.T) {
	cases := []struct {
		name      string
		current   ReviewMode
		requested ReviewMode
		want      ReviewMode
	}{
		{"same mode stays", ReviewAuto, ReviewAuto, ReviewAuto},
		{"disabled overrides auto", ReviewAuto, ReviewDisabled, ReviewDisabled},
		{"disabled beats auto-verbose", ReviewAutoVerbose, ReviewDisabled, ReviewDisabled},
		{"auto-verbose beats auto", ReviewAuto, ReviewAutoVerbose, ReviewAutoVerbose},
		{"enabled is overridden by auto", ReviewEnabled, ReviewAuto, ReviewAuto},
		{"lower priority does not override", ReviewDisabled, ReviewEnabled, ReviewDisabled},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var warned string
			got := ResolveReviewMode(c.current, c.requested, func(msg string) { warned = msg })
			if got != c.want {
				t.Errorf("ResolveReviewMode(%v, %v) = %v, want %v", c.current, c.requested, got, c.want)
			}
			if c.current != c.requested && warned == "" {
				t.Error("expected a warning when modes differ")
			}
		})
	}
}

// TestReviewDisabledNeverTouchesPackage covers invariant: Disabled mode
// never calls display/prompt and never dirties the PKGDB.
func TestReviewDisabledNeverTouchesPackage(t *testing.T) {
	p := &Package{Name: "pkg"}
	outcome, dirty, err := Review(p, ReviewDisabled,
		func(*Package) error { t.Fatal("display should not be called"); return nil },
		func(*Package) (byte, error) { t.Fatal("prompt should not be called"); return 0, nil },
		nil, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome != ReviewAccepted || dirty {
		t.Errorf("Review(Disabled) = (%v, %v), want (Accepted, false)", outcome, dirty)
	}
	if p.Reviewed {
		t.Error("Disabled must not mark the package reviewed")
	}
}

// TestReviewAlreadyReviewedShortCircuits covers the rule that a package
// already marked reviewed skips the gate entirely, in every mode.
func TestReviewAlreadyReviewedShortCircuits(t *testing.T) {
	for _, mode := range []ReviewMode{ReviewEnabled, ReviewAuto, ReviewAutoVerbose} {
		p := &Package{Name: "pkg", Reviewed: true}
		outcome, dirty, err := Review(p, mode,
			func(*Package) error { t.Fatalf("display should not be called in mode %v", mode); return nil },
			func(*Package) (byte, error) { t.Fatalf("prompt should not be called in mode %v", mode); return 0, nil },
			nil, nil)
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if outcome != ReviewAccepted || dirty {
			t.Errorf("mode %v: Review = (%v, %v), want (Accepted, false)", mode, outcome, dirty)
		}
	}
}

// TestReviewAutoNeverPromptsAlwaysDirties covers invariant #9: Auto mode
// marks a not-yet-reviewed package reviewed without ever prompting, and
// always reports the PKGDB as dirtied.
func TestReviewAutoNeverPromptsAlwaysDirties(t *testing.T) {
	p := &Package{Name: "pkg"}
	outcome, dirty, err := Review(p, ReviewAuto,
		func(*Package) error { t.Fatal("display should not be called in Auto mode"); return nil },
		func(*Package) (byte, error) { t.Fatal("prompt should not be called in Auto mode"); return 0, nil },
		nil, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome != ReviewAccepted || !dirty {
		t.Errorf("Review(Auto) = (%v, %v), want (Accepted, true)", outcome, dirty)
	}
	if !p.Reviewed {
		t.Error("Auto mode must mark the package reviewed")
	}
}

// TestReviewAutoVerboseDisplaysThenAccepts covers Auto-Verbose: it calls
// display exactly once but never prompts, and still dirties/marks reviewed.
func TestReviewAutoVerboseDisplaysThenAccepts(t *testing.T) {
	p := &Package{Name: "pkg"}
	displayed := 0
	outcome, dirty, err := Review(p, ReviewAutoVerbose,
		func(*Package) error { displayed++; return nil },
		func(*Package) (byte, error) { t.Fatal("prompt should not be called in AutoVerbose mode"); return 0, nil },
		nil, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome != ReviewAccepted || !dirty {
		t.Errorf("Review(AutoVerbose) = (%v, %v), want (Accepted, true)", outcome, dirty)
	}
	if !p.Reviewed {
		t.Error("AutoVerbose mode must mark the package reviewed")
	}
	if displayed != 1 {
		t.Errorf("display called %d times, want 1", displayed)
	}
}

// TestReviewEnabledYesAccepts covers the 'y' prompt answer.
func TestReviewEnabledYesAccepts(t *testing.T) {
	p := &Package{Name: "pkg"}
	outcome, dirty, err := Review(p, ReviewEnabled,
		func(*Package) error { return nil },
		func(*Package) (byte, error) { return 'y', nil },
		nil, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome != ReviewAccepted || !dirty || !p.Reviewed {
		t.Errorf("Review('y') = (%v, %v, reviewed=%v), want (Accepted, true, true)", outcome, dirty, p.Reviewed)
	}
}

// TestReviewEnabledNoRejectsWithoutDirtying covers the 'n' prompt answer.
func TestReviewEnabledNoRejectsWithoutDirtying(t *testing.T) {
	p := &Package{Name: "pkg"}
	outcome, dirty, err := Review(p, ReviewEnabled,
		func(*Package) error { return nil },
		func(*Package) (byte, error) { return 'n', nil },
		nil, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome != ReviewRejected || dirty || p.Reviewed {
		t.Errorf("Review('n') = (%v, %v, reviewed=%v), want (Rejected, false, false)", outcome, dirty, p.Reviewed)
	}
}

// TestReviewEnabledDefaultCallsOnDefaultAndRestarts covers the 'd' answer.
func TestReviewEnabledDefaultCallsOnDefaultAndRestarts(t *testing.T) {
	p := &Package{Name: "pkg"}
	calledDefault := false
	outcome, dirty, err := Review(p, ReviewEnabled,
		func(*Package) error { return nil },
		func(*Package) (byte, error) { return 'd', nil },
		func(*Package) error { calledDefault = true; return nil },
		func(*Package) error { t.Fatal("onEdit should not be called for 'd'"); return nil },
	)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome != ReviewRestart || dirty {
		t.Errorf("Review('d') = (%v, %v), want (Restart, false)", outcome, dirty)
	}
	if !calledDefault {
		t.Error("onDefault was not called for 'd'")
	}
	if p.Reviewed {
		t.Error("'d' must not itself mark the package reviewed")
	}
}

// TestReviewEnabledEditCallsOnEditAndRestarts covers the 'e' answer.
func TestReviewEnabledEditCallsOnEditAndRestarts(t *testing.T) {
	p := &Package{Name: "pkg"}
	calledEdit := false
	outcome, dirty, err := Review(p, ReviewEnabled,
		func(*Package) error { return nil },
		func(*Package) (byte, error) { return 'e', nil },
		func(*Package) error { t.Fatal("onDefault should not be called for 'e'"); return nil },
		func(*Package) error { calledEdit = true; return nil },
	)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome != ReviewRestart || dirty {
		t.Errorf("Review('e') = (%v, %v), want (Restart, false)", outcome, dirty)
	}
	if !calledEdit {
		t.Error("onEdit was not called for 'e'")
	}
}

// TestReviewEnabledAgainRedisplaysAndReprompts covers the 'a' answer: it
// must loop back to display and prompt again rather than returning.
func TestReviewEnabledAgainRedisplaysAndReprompts(t *testing.T) {
	p := &Package{Name: "pkg"}
	displayed := 0
	asked := 0
	outcome, dirty, err := Review(p, ReviewEnabled,
		func(*Package) error { displayed++; return nil },
		func(*Package) (byte, error) {
			asked++
			if asked == 1 {
				return 'a', nil
			}
			return 'y', nil
		},
		nil, nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome != ReviewAccepted || !dirty {
		t.Errorf("Review after 'a' then 'y' = (%v, %v), want (Accepted, true)", outcome, dirty)
	}
	if displayed != 2 || asked != 2 {
		t.Errorf("displayed=%d asked=%d, want 2 and 2 (redisplay+reprompt after 'a')", displayed, asked)
	}
}

// TestReviewEnabledQuitReturnsErrReviewQuit covers the 'q' answer.
func TestReviewEnabledQuitReturnsErrReviewQuit(t *testing.T) {
	p := &Package{Name: "pkg"}
	_, _, err := Review(p, ReviewEnabled,
		func(*Package) error { return nil },
		func(*Package) (byte, error) { return 'q', nil },
		nil, nil)
	if err != ErrReviewQuit {
		t.Errorf("Review('q') err = %v, want ErrReviewQuit", err)
	}
}
