package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcli/internal/config"
	"hospitalcli/pkg/contracts/domain"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	tempDir := t.TempDir()
	writer := NewCSVWriter(&config.Paths{ReportsDir: filepath.Join(tempDir, "reports")}, nil)
	return writer, tempDir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		wantPath string
		wantBOM  bool
	}{
		{
			name:     "relative path goes to reports",
			filePath: "out.csv",
			options: WriteOptions{
				Headers: []string{"unit", "count"},
				Records: [][]string{{"acute", "10"}},
			},
			wantPath: filepath.Join(tempDir, "reports", "out.csv"),
		},
		{
			name:     "absolute path with BOM",
			filePath: filepath.Join(tempDir, "nested", "bom.csv"),
			options: WriteOptions{
				Headers:   []string{"unit"},
				Records:   [][]string{{"maternity"}},
				BOMPrefix: true,
			},
			wantPath: filepath.Join(tempDir, "nested", "bom.csv"),
			wantBOM:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteCSV(tt.filePath, tt.options))

			content, err := os.ReadFile(tt.wantPath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, strings.HasPrefix(string(content), "\xEF\xBB\xBF"))

			body := strings.TrimPrefix(string(content), "\xEF\xBB\xBF")
			records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.options.Headers, records[0])
			assert.Equal(t, tt.options.Records, records[1:])
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	writer, tempDir := setupTestEnv(t)
	path := filepath.Join(tempDir, "append.csv")

	require.NoError(t, writer.WriteCSV(path, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"2"}}, Append: true}))

	assert.Equal(t, [][]string{{"a"}, {"1"}, {"2"}}, readCSV(t, path))
}

func TestCSVWriter_WriteTable(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	table := domain.NewTable("unified", []string{"unit", "gender", "age"})
	table.Rows = [][]domain.Value{
		{domain.Present("acute"), domain.Present("m"), domain.Present("30")},
		{domain.Present("maternity"), domain.Present("f"), domain.Absent},
	}

	require.NoError(t, writer.WriteTable("unified.csv", table, false))

	records := readCSV(t, filepath.Join(tempDir, "reports", "unified.csv"))
	assert.Equal(t, [][]string{
		{"unit", "gender", "age"},
		{"acute", "m", "30"},
		{"maternity", "f", ""},
	}, records)
}

func TestWriteTableTo(t *testing.T) {
	table := domain.NewTable("unified", []string{"unit", "bmi"})
	table.Rows = [][]domain.Value{
		{domain.Present("acute"), domain.Absent},
		{domain.Present("maternity, west"), domain.Present("23.6")},
	}

	var b strings.Builder
	require.NoError(t, WriteTableTo(&b, table))
	assert.Equal(t, "unit,bmi\nacute,\n\"maternity, west\",23.6\n", b.String())
}
