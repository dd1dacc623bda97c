package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaceColors_Constraints(t *testing.T) {
	assert.Contains(t, FaceColors, "JSON array of exactly 9 colors")
	assert.Contains(t, FaceColors, "top-left to bottom-right")
	for _, c := range []string{"white", "yellow", "red", "orange", "blue", "green"} {
		assert.Contains(t, FaceColors, c)
	}
}

func TestSolution_EmbedsState(t *testing.T) {
	out := Solution(`{"U": ["white"]}`)
	assert.Contains(t, out, `{"U": ["white"]}`)
	assert.Contains(t, out, "' for counterclockwise and 2 for double turns")
	for _, f := range []string{`"move"`, `"description"`, `"reason"`, `"targetPieces"`} {
		assert.Contains(t, out, f)
	}
	assert.False(t, strings.Contains(out, "%!"), "no formatting artifacts")
}

func TestStepsSchema_IsJSON(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(StepsSchema), &m))
	assert.Equal(t, "array", m["type"])
	items, ok := m["items"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, items["additionalProperties"])
}
