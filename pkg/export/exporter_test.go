package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Student", "Course", "Balance"},
		Rows: []map[string]string{
			{"Student": "Ayesha Khan", "Course": "Graphic Designing", "Balance": "2500"},
			{"Student": "Bilal Ahmed", "Course": "Web Development", "Balance": "0"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Student,Course,Balance")
	assert.Contains(t, string(payload), "Ayesha Khan,Graphic Designing,2500")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDataset(), "Fee Ledger")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	payload, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(payload, []byte("PK")))
}

func TestXLSXExporterRequiresHeaders(t *testing.T) {
	_, err := NewXLSXExporter().Render(Dataset{})
	require.Error(t, err)
}
