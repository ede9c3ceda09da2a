package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gforma/lead-assistant/internal/model"
)

func TestFindMatch_SpecialtyInsideQuery(t *testing.T) {
	d := New([]model.Teacher{{ID: "T-1", Specialty: "negotiation"}})

	got, ok := d.FindMatch("improve negotiation skills")
	require.True(t, ok)
	require.Equal(t, "T-1", got.ID)

	_, ok = d.FindMatch("unrelated topic")
	require.False(t, ok)
}

func TestFindMatch_QueryInsideSpecialty(t *testing.T) {
	d := New([]model.Teacher{{ID: "T-1", Specialty: "Gestión del Tiempo"}})

	got, ok := d.FindMatch("TIEMPO")
	require.True(t, ok)
	require.Equal(t, "T-1", got.ID)
}

func TestFindMatch_FirstCatalogEntryWins(t *testing.T) {
	d := New([]model.Teacher{
		{ID: "T-1", Specialty: "ventas"},
		{ID: "T-2", Specialty: "ventas b2b"},
	})

	got, ok := d.FindMatch("formación en ventas b2b")
	require.True(t, ok)
	require.Equal(t, "T-1", got.ID)
}

func TestFindMatch_EmptyQuery(t *testing.T) {
	_, ok := Default().FindMatch("   ")
	require.False(t, ok)
}

func TestNew_CopiesCatalog(t *testing.T) {
	src := []model.Teacher{{ID: "T-1", Specialty: "excel"}}
	d := New(src)
	src[0].Specialty = "python"

	_, ok := d.FindMatch("excel avanzado")
	require.True(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teachers:\n  - id: T-9\n    specialty: oratoria\n"), 0o600))

	d, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())

	got, ok := d.FindMatch("clases de oratoria")
	require.True(t, ok)
	require.Equal(t, "T-9", got.ID)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("teachers: []\n"), 0o600))
	_, err := LoadFile(empty)
	require.Error(t, err)

	missing := filepath.Join(dir, "missing-id.yaml")
	require.NoError(t, os.WriteFile(missing, []byte("teachers:\n  - specialty: excel\n"), 0o600))
	_, err = LoadFile(missing)
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}
