package names

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateDefaults(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 11
	n, err := Generate(opts)
	require.NoError(t, err)

	assert.Len(t, n.Specialties, DefaultSpecialties)
	assert.Len(t, n.SubSpecialties, DefaultSubSpecialties)
	assert.Len(t, n.Doctors, DefaultDoctors)

	assert.ElementsMatch(t, specialties, n.Specialties)

	seen := make(map[string]bool)
	for _, s := range n.SubSpecialties {
		assert.False(t, seen[s], "duplicate %s", s)
		seen[s] = true
	}
	for _, d := range n.Doctors {
		assert.True(t, strings.HasPrefix(d, "Dr. "), d)
		assert.GreaterOrEqual(t, len(strings.Fields(d)), 3, d)
	}
}

func TestSubSpecialtiesUseSelectedSpecialties(t *testing.T) {
	n, err := Generate(Options{Specialties: 3, SubSpecialties: 10, Doctors: 1, Seed: 5})
	require.NoError(t, err)

	for _, sub := range n.SubSpecialties {
		matched := false
		for _, s := range n.Specialties {
			if strings.HasSuffix(sub, " "+s) {
				matched = true
			}
		}
		assert.True(t, matched, sub)
	}
}

func TestGenerateIsSeeded(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 9
	a, err := Generate(opts)
	require.NoError(t, err)
	b, err := Generate(opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateRejectsImpossibleCounts(t *testing.T) {
	_, err := Generate(Options{Specialties: 100})
	assert.Error(t, err)

	_, err = Generate(Options{Specialties: 2, SubSpecialties: 23})
	assert.Error(t, err)

	_, err = Generate(Options{Specialties: 1, Doctors: -1})
	assert.Error(t, err)

	_, err = Generate(Options{Doctors: 5})
	assert.Error(t, err, "at least one specialty is required")
}

func TestGenerateHonoursZeroCounts(t *testing.T) {
	n, err := Generate(Options{Specialties: 2, SubSpecialties: 0, Doctors: 0, Seed: 4})
	require.NoError(t, err)

	assert.Len(t, n.Specialties, 2)
	assert.Empty(t, n.SubSpecialties)
	assert.Empty(t, n.Doctors)
}

func TestWriteXLSX(t *testing.T) {
	n, err := Generate(Options{Specialties: 4, SubSpecialties: 6, Doctors: 5, Seed: 3})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Generated_Names.xlsx")
	require.NoError(t, n.WriteXLSX(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Specialties", "SubSpecialties", "Doctors"}, f.GetSheetList())

	rows, err := f.GetRows("Doctors")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "DoctorName", rows[0][0])
	assert.Equal(t, n.Doctors[0], rows[1][0])
}

func TestWriteCSVDir(t *testing.T) {
	n, err := Generate(Options{Specialties: 2, SubSpecialties: 3, Doctors: 2, Seed: 3})
	require.NoError(t, err)

	dir := t.TempDir()
	paths, err := n.WriteCSVDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	data, err := os.ReadFile(filepath.Join(dir, "SubSpecialties.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "SubSpecialtyName", lines[0])
	assert.Len(t, lines, 4)
}
