package generator

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
)

// ManifestFile names the JSON file listing every document's expectation.
const ManifestFile = "expected.json"

// WriteDataset writes one file per document under dir plus the manifest.
// Format "html" wraps each line in a div, anything else writes plain text.
func WriteDataset(dataset Dataset, dir, format string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, doc := range dataset.Documents {
		name, body := doc.Name+".txt", doc.Text
		if strings.EqualFold(format, "html") {
			name, body = doc.Name+".html", renderHTML(doc.Text)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	return writeJSON(filepath.Join(dir, ManifestFile), dataset)
}

// ReadManifest loads a manifest written by WriteDataset. Document text is not
// part of the manifest.
func ReadManifest(dir string) (Dataset, error) {
	path := filepath.Join(dir, ManifestFile)
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var dataset Dataset
	if err := json.NewDecoder(file).Decode(&dataset); err != nil {
		return Dataset{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return dataset, nil
}

func renderHTML(text string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>등기사항전부증명서</title></head><body>\n")
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		b.WriteString("<div>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</div>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
