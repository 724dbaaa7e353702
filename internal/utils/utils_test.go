package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestAskConfirmation(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		in := &InputUtils{In: strings.NewReader(input), Out: &out}
		assert.Equal(t, want, in.AskConfirmation("Truncate table?", false), "%q", input)
		assert.Contains(t, out.String(), "Truncate table? (y/N)")
	}
}

func TestAskConfirmationForce(t *testing.T) {
	var out bytes.Buffer
	in := &InputUtils{In: strings.NewReader(""), Out: &out}
	assert.True(t, in.AskConfirmation("Truncate table?", true))
	assert.Empty(t, out.String())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []string{"ElectiveID", "PatientDoB", "Comments"}, []types.Record{
		{"ElectiveID": "EI-SU0001-00001", "PatientDoB": time.Date(1958, 3, 4, 0, 0, 0, 0, time.UTC), "Comments": nil},
		{"ElectiveID": "EI-SU0001-00002", "PatientDoB": nil, "Comments": "Café"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.Contains(t, lines[1], "ElectiveID")
	assert.Contains(t, lines[3], "1958-03-04")
	assert.Contains(t, lines[3], "NULL")
	assert.Contains(t, lines[4], "Café")
	assert.True(t, strings.HasPrefix(lines[5], "└"))

	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []string{"a"}, nil)
	assert.Empty(t, buf.String())
}
