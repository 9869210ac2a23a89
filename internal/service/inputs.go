package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/young626-jang/ltv-flask/internal/textsrc"
)

// ReadInput loads one document from disk.
func ReadInput(path string) (AnalyzeInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnalyzeInput{}, fmt.Errorf("read %s: %w", path, err)
	}
	return AnalyzeInput{SourceName: filepath.Base(path), Content: data}, nil
}

// LoadInputs reads every document in dir whose extension the text extractor
// accepts, ordered by file name. Subdirectories are not descended.
func LoadInputs(dir string) ([]AnalyzeInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !textsrc.Accepts(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	inputs := make([]AnalyzeInput, 0, len(names))
	for _, name := range names {
		in, err := ReadInput(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
