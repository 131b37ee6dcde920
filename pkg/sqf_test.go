package pkg

import (
	"bytes"
	"testing"
)

func TestWriteQueueOutputFile(t *testing.T) {
	entries := []QueueEntry{
		{Name: "bash"},
		{Name: "vim", BuildOpts: []string{"GUI=no", "PYTHON=yes"}},
	}
	var buf bytes.Buffer
	if err := WriteQueue(&buf, entries, OutputFile, "repo"); err != nil {
		t.Fatalf("WriteQueue: %v", err)
	}
	want := "bash\nvim | GUI=no PYTHON=yes\n"
	if buf.String() != want {
		t.Errorf("OutputFile = %q, want %q", buf.String(), want)
	}
}

func TestWriteQueueOutputStdout(t *testing.T) {
	entries := []QueueEntry{{Name: "bash"}, {Name: "vim"}}
	var buf bytes.Buffer
	if err := WriteQueue(&buf, entries, OutputStdout, "repo"); err != nil {
		t.Fatalf("WriteQueue: %v", err)
	}
	want := "bash vim\n"
	if buf.String() != want {
		t.Errorf("OutputStdout = %q, want %q", buf.String(), want)
	}
}

func TestWriteQueueOutputSlackpkg1(t *testing.T) {
	entries := []QueueEntry{{Name: "bash"}, {Name: "vim"}}
	var buf bytes.Buffer
	if err := WriteQueue(&buf, entries, OutputSlackpkg1, "myrepo"); err != nil {
		t.Fatalf("WriteQueue: %v", err)
	}
	want := "myrepo:bash myrepo:vim\n"
	if buf.String() != want {
		t.Errorf("OutputSlackpkg1 = %q, want %q", buf.String(), want)
	}
}

func TestWriteQueueOutputSlackpkg2(t *testing.T) {
	entries := []QueueEntry{{Name: "bash"}, {Name: "vim"}}
	var buf bytes.Buffer
	if err := WriteQueue(&buf, entries, OutputSlackpkg2, "myrepo"); err != nil {
		t.Fatalf("WriteQueue: %v", err)
	}
	want := "bash:myrepo vim:myrepo\n"
	if buf.String() != want {
		t.Errorf("OutputSlackpkg2 = %q, want %q", buf.String(), want)
	}
}

func TestWriteQueueEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQueue(&buf, nil, OutputFile, "repo"); err != nil {
		t.Fatalf("WriteQueue: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty queue produced output: %q", buf.String())
	}
}
