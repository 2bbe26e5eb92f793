// Package survey reads the anchor survey that fixes the estimator geometry.
package survey

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"yard-tracker/internal/positioning"
)

type File struct {
	Anchors []AnchorEntry `yaml:"anchors"`
}

type AnchorEntry struct {
	ID              int      `yaml:"id"`
	Name            string   `yaml:"name,omitempty"`
	X               float64  `yaml:"x"`
	Y               float64  `yaml:"y"`
	ReferenceSignal *float64 `yaml:"reference_signal,omitempty"`
}

// LoadFile reads the survey at path. Anchors keep the order of the file.
func LoadFile(path string) ([]positioning.Anchor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading anchor survey: %w", err)
	}

	anchors, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing anchor survey %s: %w", path, err)
	}
	return anchors, nil
}

func Parse(r io.Reader) ([]positioning.Anchor, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("survey is empty")
		}
		return nil, err
	}

	if len(file.Anchors) == 0 {
		return nil, errors.New("survey lists no anchors")
	}

	anchors := make([]positioning.Anchor, 0, len(file.Anchors))
	for _, entry := range file.Anchors {
		anchors = append(anchors, positioning.Anchor{
			ID:              entry.ID,
			Position:        positioning.Point{X: entry.X, Y: entry.Y},
			ReferenceSignal: entry.ReferenceSignal,
		})
	}
	return anchors, nil
}
