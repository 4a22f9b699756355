package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	data := Dataset{
		Headers: []string{"Date", "Status", "Total Hours"},
		Rows: []map[string]string{
			{"Date": "2026-03-10", "Status": "present", "Total Hours": "8:07"},
			{"Date": "2026-03-11", "Status": "late"},
		},
	}

	out, err := exporter.Render(data)
	require.NoError(t, err)

	expected := "Date,Status,Total Hours\n2026-03-10,present,8:07\n2026-03-11,late,\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
