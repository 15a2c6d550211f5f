package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Lab Results",
		Meta:    []string{"Patient: Juan Dela Cruz"},
		Headers: []string{"Sample Type", "Status", "Comments"},
		Rows: []map[string]string{
			{"Sample Type": "stool", "Status": "approved", "Comments": "negative, no ova seen"},
			{"Sample Type": "blood", "Status": "pending"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Sample Type,Status,Comments\nstool,approved,\"negative, no ova seen\"\nblood,pending,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	out, err := exporter.Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())

	_, err = exporter.Render(Dataset{})
	require.Error(t, err)
}
