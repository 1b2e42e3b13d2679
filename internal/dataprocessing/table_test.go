package dataprocessing

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escolacli/internal/errors"
	"escolacli/internal/shared/testutil"
)

func TestIsMissing(t *testing.T) {
	missing := []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"}
	for _, cell := range missing {
		assert.True(t, IsMissing(cell), "%q should be missing", cell)
	}

	present := []string{"0", "Ana", "na", "Desconhecido", "-", "  ", " NA "}
	for _, cell := range present {
		assert.False(t, IsMissing(cell), "%q should not be missing", cell)
	}
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   [][]string
		wantErr    bool
	}{
		{
			name:       "simple table",
			input:      "id,nome\n10,Matemática\n20,Português\n",
			wantHeader: []string{"id", "nome"},
			wantRows:   [][]string{{"10", "Matemática"}, {"20", "Português"}},
		},
		{
			name:       "BOM and padded header",
			input:      "\uFEFFid , nome\n1,Ana\n",
			wantHeader: []string{"id", "nome"},
			wantRows:   [][]string{{"1", "Ana"}},
		},
		{
			name:       "short rows are padded",
			input:      "id,nome,turma\n1,Ana\n",
			wantHeader: []string{"id", "nome", "turma"},
			wantRows:   [][]string{{"1", "Ana", ""}},
		},
		{
			name:       "quoted comma",
			input:      "id,nome\n1,\"Silva, Ana\"\n",
			wantHeader: []string{"id", "nome"},
			wantRows:   [][]string{{"1", "Silva, Ana"}},
		},
		{
			name:       "header only",
			input:      "id,nome\n",
			wantHeader: []string{"id", "nome"},
		},
		{
			name:    "wide row",
			input:   "id,nome\n1,Ana,extra\n",
			wantErr: true,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseTable(strings.NewReader(tt.input), "test")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, table.Header)
			assert.Equal(t, tt.wantRows, table.Rows)
		})
	}
}

func TestReadTable(t *testing.T) {
	dir := t.TempDir()

	t.Run("existing file", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "disciplinas.csv", testutil.CleanSubjects)

		table, err := ReadTable(path, "disciplinas")
		require.NoError(t, err)
		assert.Equal(t, "disciplinas", table.Name)
		assert.Equal(t, 2, table.Len())
		assert.Equal(t, 1, table.ColumnIndex("nome"))
		assert.Equal(t, -1, table.ColumnIndex("turma"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadTable(filepath.Join(dir, "nope.csv"), "alunos")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeMissingInput))
		assert.Contains(t, err.Error(), "nope.csv")
	})
}

func TestTableRecords(t *testing.T) {
	table := Table{Header: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}
	assert.Equal(t, [][]string{{"a"}, {"1"}, {"2"}}, table.Records())
}
