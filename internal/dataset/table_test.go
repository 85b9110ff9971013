package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/incomegrid/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SemicolonCatalog(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "codislas.csv")
	body := "\ufeffISLA;NOMBRE\nGran Canaria;Telde\nTenerife;Arona\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	// --- Act ---
	table, err := Load(path, ';')

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, path, table.Path)
	assert.Equal(t, []string{"ISLA", "NOMBRE"}, table.Header)
	if diff := cmp.Diff([][]string{{"Gran Canaria", "Telde"}, {"Tenerife", "Arona"}}, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), ',')
	require.ErrorIs(t, err, fsutil.ErrFileNotFound)
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "", wantErr: "no header row"},
		{name: "ragged", input: "a,b\n1,2\n3\n", wantErr: "line 3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(strings.NewReader(tc.input), ',')
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestTable_ColumnRenameFilter(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	table, err := Read(strings.NewReader("ISLA,NOMBRE\nGran Canaria,Telde\nTenerife,Arona\n"), ',')
	require.NoError(t, err)

	// --- Act ---
	renamed, renameErr := table.Rename(map[string]string{"ISLA": "island", "NOMBRE": "municipality"})
	filtered := renamed.Filter(func(row []string) bool { return row[0] == "Tenerife" })
	names, colErr := filtered.Column("municipality")
	_, missingErr := table.Column("island")

	// --- Assert ---
	require.NoError(t, renameErr)
	require.NoError(t, colErr)
	assert.Equal(t, []string{"island", "municipality"}, renamed.Header)
	assert.Equal(t, []string{"ISLA", "NOMBRE"}, table.Header, "rename must not mutate the source")
	assert.Equal(t, []string{"Arona"}, names)
	assert.Equal(t, 1, filtered.Len())
	require.Error(t, missingErr)

	_, err = table.Rename(map[string]string{"nope": "x"})
	require.Error(t, err)
}
