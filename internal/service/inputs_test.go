package service

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadInputs(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.txt":         "second",
		"a.html":        "<html><body>first</body></html>",
		"expected.json": "{}",
		"scan.pdf":      "%PDF",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	inputs, err := LoadInputs(dir)
	if err != nil {
		t.Fatalf("LoadInputs returned error: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(inputs))
	}
	if inputs[0].SourceName != "a.html" || inputs[1].SourceName != "b.txt" {
		t.Fatalf("unexpected order %q, %q", inputs[0].SourceName, inputs[1].SourceName)
	}
	if string(inputs[1].Content) != "second" {
		t.Fatalf("unexpected content %q", inputs[1].Content)
	}

	if _, err := LoadInputs(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
