package pkg

import "testing"

// TestGenerateRemoveQueueCascade covers end-to-end scenario 3 ("Remove
// cascade"): removing a, which requires b, which requires c, all
// installed and uniquely required, must queue all three leaves-first.
func TestGenerateRemoveQueueCascade(t *testing.T) {
	g := NewGraph(t.TempDir())
	a := &Package{Name: "a", SBODir: "cat/a"}
	b := &Package{Name: "b", SBODir: "cat/b"}
	c := &Package{Name: "c", SBODir: "cat/c"}
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)
	g.SBOPkgs.Insert(c)
	a.Required = []*Package{b}
	b.Parents = []*Package{a}
	b.Required = []*Package{c}
	c.Parents = []*Package{b}

	oracle := &fakeOracle{installed: map[string]bool{"a": true, "b": true, "c": true}}
	opts := RemoveQueueOptions{Deep: true, Oracle: oracle}
	entries, err := GenerateRemoveQueue(g, []string{a.Name}, opts)
	if err != nil {
		t.Fatalf("GenerateRemoveQueue: %v", err)
	}
	got := names(entries)
	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries = %v, want %v", got, want)
		}
	}
}

// TestGenerateRemoveQueueStillRequired covers the "[required] b <-- d"
// diagnostic: removing a (which requires b) must not queue b when a
// second installed package d also requires b and is not itself being
// removed.
func TestGenerateRemoveQueueStillRequired(t *testing.T) {
	g := NewGraph(t.TempDir())
	a := &Package{Name: "a", SBODir: "cat/a"}
	b := &Package{Name: "b", SBODir: "cat/b"}
	d := &Package{Name: "d", SBODir: "cat/d"}
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)
	g.SBOPkgs.Insert(d)
	a.Required = []*Package{b}
	d.Required = []*Package{b}
	b.Parents = []*Package{a, d}

	oracle := &fakeOracle{installed: map[string]bool{"a": true, "b": true, "d": true}}
	var required [][2]string
	opts := RemoveQueueOptions{
		Deep:   true,
		Oracle: oracle,
		OnRequired: func(child, parent string) {
			required = append(required, [2]string{child, parent})
		},
	}
	entries, err := GenerateRemoveQueue(g, []string{a.Name}, opts)
	if err != nil {
		t.Fatalf("GenerateRemoveQueue: %v", err)
	}
	got := names(entries)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("entries = %v, want [a] (b vetoed by still-installed parent d)", got)
	}
	if len(required) != 1 || required[0][0] != "b" || required[0][1] != "d" {
		t.Errorf("OnRequired calls = %v, want exactly [{b d}]", required)
	}
}

// TestGenerateRemoveQueueSkipsUninstalled covers the rule that a reachable
// but not-installed descendant is never a removal candidate.
func TestGenerateRemoveQueueSkipsUninstalled(t *testing.T) {
	g := NewGraph(t.TempDir())
	a := &Package{Name: "a", SBODir: "cat/a"}
	b := &Package{Name: "b", SBODir: "cat/b"} // not installed
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)
	a.Required = []*Package{b}
	b.Parents = []*Package{a}

	oracle := &fakeOracle{installed: map[string]bool{"a": true}}
	opts := RemoveQueueOptions{Deep: true, Oracle: oracle}
	entries, err := GenerateRemoveQueue(g, []string{a.Name}, opts)
	if err != nil {
		t.Fatalf("GenerateRemoveQueue: %v", err)
	}
	got := names(entries)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("entries = %v, want [a] only; uninstalled b must not be queued", got)
	}
}

// TestGenerateRemoveQueueMetaPackagesElided covers meta-package elision
// on the removal path too.
func TestGenerateRemoveQueueMetaPackagesElided(t *testing.T) {
	g := NewGraph(t.TempDir())
	a := &Package{Name: "a", SBODir: "cat/a"}
	group := &Package{Name: "group", IsMeta: true}
	b := &Package{Name: "b", SBODir: "cat/b"}
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)
	g.MetaPkgs.Insert(group)
	a.Required = []*Package{group}
	group.Parents = []*Package{a}
	group.Required = []*Package{b}
	b.Parents = []*Package{group}

	oracle := &fakeOracle{installed: map[string]bool{"a": true, "b": true}}
	opts := RemoveQueueOptions{Deep: true, Oracle: oracle}
	entries, err := GenerateRemoveQueue(g, []string{a.Name}, opts)
	if err != nil {
		t.Fatalf("GenerateRemoveQueue: %v", err)
	}
	for _, e := range entries {
		if e.Name == "group" {
			t.Errorf("meta-package leaked into remove queue: %v", names(entries))
		}
	}
}

// TestGenerateRemoveQueueNonDeepDirectOnly exercises the fixed
// max_dist=0 default for a non-deep remove: only the target itself is a
// removal candidate, per spec.md §4.6.
func TestGenerateRemoveQueueNonDeepDirectOnly(t *testing.T) {
	g := NewGraph(t.TempDir())
	a := &Package{Name: "a", SBODir: "cat/a"}
	b := &Package{Name: "b", SBODir: "cat/b"}
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)
	a.Required = []*Package{b}
	b.Parents = []*Package{a}

	oracle := &fakeOracle{installed: map[string]bool{"a": true, "b": true}}
	opts := RemoveQueueOptions{Oracle: oracle}
	entries, err := GenerateRemoveQueue(g, []string{a.Name}, opts)
	if err != nil {
		t.Fatalf("GenerateRemoveQueue: %v", err)
	}
	got := names(entries)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("non-deep remove = %v, want [a] only", got)
	}
}
