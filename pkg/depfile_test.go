package pkg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateDefaultDepAndLoad(t *testing.T) {
	dir := t.TempDir()
	g := NewGraph(dir)
	a := &Package{Name: "a", SBODir: "cat/a"}
	b := &Package{Name: "b", SBODir: "cat/b"}
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)

	readRequires := func(sboDir string) ([]string, error) {
		if sboDir == "cat/a" {
			return []string{"b", "%README%"}, nil
		}
		return nil, nil
	}
	if err := CreateDefaultDep(dir, a, readRequires); err != nil {
		t.Fatalf("CreateDefaultDep: %v", err)
	}
	if err := CreateDefaultDep(dir, b, readRequires); err != nil {
		t.Fatalf("CreateDefaultDep: %v", err)
	}

	if err := LoadDep(g, a, LoaderOptions{Recursive: true, ReadRequires: readRequires}); err != nil {
		t.Fatalf("LoadDep: %v", err)
	}
	if len(a.Required) != 1 || a.Required[0] != b {
		t.Fatalf("expected a to require exactly b, got %v", a.Required)
	}
	if len(b.Parents) != 1 || b.Parents[0] != a {
		t.Fatalf("expected b.Parents to contain a, got %v", b.Parents)
	}

	// %README% must never become a required entry.
	for _, r := range a.Required {
		if r.Name == "%README%" {
			t.Fatal("%README% leaked into the required list")
		}
	}
}

func TestLoadDepCycleDetection(t *testing.T) {
	dir := t.TempDir()
	g := NewGraph(dir)
	a := &Package{Name: "a", SBODir: "cat/a"}
	b := &Package{Name: "b", SBODir: "cat/b"}
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)

	writeDepFile(t, dir, "a", "REQUIRED:\nb\n")
	writeDepFile(t, dir, "b", "REQUIRED:\na\n")

	err := LoadDep(g, a, LoaderOptions{Recursive: true})
	if err == nil {
		t.Fatal("expected cycle detection error")
	}
	cerr, ok := err.(*CycleError)
	if !ok {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if cerr.Parent != "b" || cerr.Child != "a" {
		t.Errorf("cycle error names wrong packages: %+v", cerr)
	}
}

func TestLoadDepMetaPackage(t *testing.T) {
	dir := t.TempDir()
	g := NewGraph(dir)
	writeDepFile(t, dir, "group", "METAPKG\nREQUIRED:\n")

	node, err := g.Search("group")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if node == nil || !node.IsMeta {
		t.Fatalf("expected group to resolve as a meta-package, got %+v", node)
	}
}

func TestLoadDepMalformedFile(t *testing.T) {
	dir := t.TempDir()
	g := NewGraph(dir)
	a := &Package{Name: "a", SBODir: "cat/a"}
	g.SBOPkgs.Insert(a)
	writeDepFile(t, dir, "a", "stray line before any block marker\n")

	err := LoadDep(g, a, LoaderOptions{Recursive: true})
	if err == nil {
		t.Fatal("expected malformed dependency file error")
	}
	if _, ok := err.(*DepFileError); !ok {
		t.Fatalf("expected *DepFileError, got %T: %v", err, err)
	}
}

func TestLoadDepOptionalRespectsFlag(t *testing.T) {
	dir := t.TempDir()
	g := NewGraph(dir)
	a := &Package{Name: "a", SBODir: "cat/a"}
	b := &Package{Name: "b", SBODir: "cat/b"}
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)
	writeDepFile(t, dir, "a", "REQUIRED:\n\nOPTIONAL:\nb\n")
	writeDepFile(t, dir, "b", "REQUIRED:\n")

	if err := LoadDep(g, a, LoaderOptions{Recursive: true, Optional: false}); err != nil {
		t.Fatalf("LoadDep: %v", err)
	}
	if len(a.Required) != 0 {
		t.Fatalf("OPTIONAL entries must not be followed without Optional:true, got %v", a.Required)
	}

	a.Required, b.Parents = nil, nil
	if err := LoadDep(g, a, LoaderOptions{Recursive: true, Optional: true}); err != nil {
		t.Fatalf("LoadDep: %v", err)
	}
	if len(a.Required) != 1 || a.Required[0] != b {
		t.Fatalf("OPTIONAL entries must be followed with Optional:true, got %v", a.Required)
	}
}

func TestLoadDepIdempotent(t *testing.T) {
	dir := t.TempDir()
	g := NewGraph(dir)
	a := &Package{Name: "a", SBODir: "cat/a"}
	b := &Package{Name: "b", SBODir: "cat/b"}
	g.SBOPkgs.Insert(a)
	g.SBOPkgs.Insert(b)
	writeDepFile(t, dir, "a", "REQUIRED:\nb\n")
	writeDepFile(t, dir, "b", "REQUIRED:\n")

	opts := LoaderOptions{Recursive: true}
	if err := LoadDep(g, a, opts); err != nil {
		t.Fatalf("first LoadDep: %v", err)
	}
	firstLen := len(a.Required)
	if err := LoadDep(g, a, opts); err != nil {
		t.Fatalf("second LoadDep: %v", err)
	}
	if len(a.Required) != firstLen {
		t.Errorf("second LoadDep changed the edge set: %d -> %d", firstLen, len(a.Required))
	}
}

func TestInfoCRCStable(t *testing.T) {
	c1 := InfoCRC("readme text", []string{"a", "b"})
	c2 := InfoCRC("readme text", []string{"a", "b"})
	if c1 != c2 {
		t.Error("InfoCRC must be deterministic for identical inputs")
	}
	c3 := InfoCRC("readme text", []string{"a", "c"})
	if c1 == c3 {
		t.Error("InfoCRC must change when the requires list changes")
	}
}

func writeDepFile(t *testing.T, depDir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(depDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write dep file %s: %v", name, err)
	}
}
