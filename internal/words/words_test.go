package words

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewNormalizes(t *testing.T) {
	l := New([]string{" crane", "Apple", "CRANE", "toolong", "abc", "c4ane", "", "trace "})
	want := []string{"CRANE", "APPLE", "TRACE"}
	got := l.Words()
	if len(got) != len(want) {
		t.Fatalf("words = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("words[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !l.Contains("apple") || l.Contains("toolong") {
		t.Fatal("Contains mismatch")
	}
	if l.At(2) != "TRACE" {
		t.Fatalf("At(2) = %q", l.At(2))
	}
}

func TestLoadEmbeddedDefault(t *testing.T) {
	l, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Len() < 100 {
		t.Fatalf("embedded list has %d words", l.Len())
	}
	for _, w := range l.Words() {
		if normalize(w) != w {
			t.Fatalf("embedded word %q not normalized", w)
		}
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(txt, []byte("# answers\ncrane\n\n  apple\nnope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := Load(txt)
	if err != nil {
		t.Fatalf("Load(txt): %v", err)
	}
	if l.Len() != 2 || l.At(0) != "CRANE" {
		t.Fatalf("txt list = %v", l.Words())
	}

	js := filepath.Join(dir, "list.JSON")
	if err := os.WriteFile(js, []byte(`{"words":["trace","BRAVE"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err = Load(js)
	if err != nil {
		t.Fatalf("Load(json): %v", err)
	}
	if l.Len() != 2 || !l.Contains("brave") {
		t.Fatalf("json list = %v", l.Words())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("toolong\nxyz\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(empty); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"words":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("expected decode error")
	}
}
