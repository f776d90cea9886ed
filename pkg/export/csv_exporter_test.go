package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderKeepsColumnOrder(t *testing.T) {
	data := Dataset{
		Headers: []string{"Cours", "Domaine", "Vues"},
		Rows: []map[string]string{
			{"Cours": "Introduction à Go", "Domaine": "Informatique", "Vues": "42"},
			{"Cours": "Algèbre linéaire", "Domaine": "Mathématiques", "Vues": "17"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "\uFEFF"), "excel needs the UTF-8 BOM")

	body := strings.TrimPrefix(string(out), "\uFEFF")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Cours,Domaine,Vues", lines[0])
	assert.Equal(t, "Introduction à Go,Informatique,42", lines[1])
}

func TestCSVRenderMissingCellIsEmpty(t *testing.T) {
	data := Dataset{
		Headers: []string{"Cours", "Vues"},
		Rows:    []map[string]string{{"Cours": "Optique"}},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Optique,")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
