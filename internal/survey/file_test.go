package survey

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yardSurvey = `
anchors:
  - id: 3
    name: gate
    x: 0
    y: 0
    reference_signal: -40
  - id: 1
    x: 10
    y: 0
  - id: 2
    x: 0
    y: 10.5
    reference_signal: -62.5
`

func TestParse(t *testing.T) {
	anchors, err := Parse(strings.NewReader(yardSurvey))
	require.NoError(t, err)
	require.Len(t, anchors, 3)

	assert.Equal(t, []int{3, 1, 2}, []int{anchors[0].ID, anchors[1].ID, anchors[2].ID})
	assert.Equal(t, 10.5, anchors[2].Position.Y)
	require.NotNil(t, anchors[0].ReferenceSignal)
	assert.Equal(t, -40.0, *anchors[0].ReferenceSignal)
	assert.Nil(t, anchors[1].ReferenceSignal)
}

func TestParse_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"empty document": "",
		"no anchors":     "anchors: []\n",
		"unknown field":  "anchors:\n  - id: 1\n    z: 3\n",
		"bad type":       "anchors:\n  - id: one\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yardSurvey), 0o600))

	anchors, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, anchors, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
