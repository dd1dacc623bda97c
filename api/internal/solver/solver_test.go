package solver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cube-solver/api/internal/apperr"
	"cube-solver/api/internal/cube"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (f *fakeModel) Text(_ context.Context, p string) (string, error) {
	f.calls++
	f.prompt = p
	return f.reply, f.err
}

func solidState() cube.State {
	colors := map[cube.Face]cube.Color{
		cube.Up: cube.White, cube.Right: cube.Red, cube.Front: cube.Green,
		cube.Down: cube.Yellow, cube.Left: cube.Orange, cube.Back: cube.Blue,
	}
	st := cube.State{}
	for f, c := range colors {
		g := make(cube.Grid, 9)
		for i := range g {
			g[i] = c
		}
		st[f] = g
	}
	return st
}

func newPlanner(t *testing.T, m Model) *Planner {
	t.Helper()
	p, err := NewPlanner(m)
	require.NoError(t, err)
	return p
}

func TestSerializeState_CanonicalOrder(t *testing.T) {
	out, err := SerializeState(solidState())
	require.NoError(t, err)

	idx := func(f string) int { return strings.Index(out, `"`+f+`": [`) }
	order := []int{idx("U"), idx("R"), idx("F"), idx("D"), idx("L"), idx("B")}
	for i, pos := range order {
		require.NotEqual(t, -1, pos, "face %d missing", i)
		if i > 0 {
			assert.Greater(t, pos, order[i-1])
		}
	}
	assert.True(t, strings.HasPrefix(out, "{\n  \"U\": [\n    \"white\","))
}

func TestPlan_Success(t *testing.T) {
	m := &fakeModel{reply: `[{"move":"R","description":"d","reason":"r","targetPieces":["x"]},` +
		`{"move":"U'","description":"d2","reason":"r2","targetPieces":[]},` +
		`{"move":"F2","description":"d3","reason":"r3","targetPieces":["a","b"]}]`}
	p := newPlanner(t, m)

	steps, err := p.Plan(context.Background(), solidState())
	require.NoError(t, err)

	assert.Equal(t, []cube.MoveStep{
		{Move: "R", Description: "d", Reason: "r", TargetPieces: []string{"x"}},
		{Move: "U'", Description: "d2", Reason: "r2", TargetPieces: []string{}},
		{Move: "F2", Description: "d3", Reason: "r3", TargetPieces: []string{"a", "b"}},
	}, steps)

	assert.Equal(t, 1, m.calls)
	assert.Contains(t, m.prompt, `"U": [`)
	assert.Contains(t, m.prompt, `"orange"`)
}

func TestPlan_IncompleteState(t *testing.T) {
	m := &fakeModel{}
	st := solidState()
	delete(st, cube.Back)

	_, err := newPlanner(t, m).Plan(context.Background(), st)
	require.Error(t, err)
	assert.Zero(t, m.calls)
}

func TestPlan_UpstreamErrorPassesThrough(t *testing.T) {
	m := &fakeModel{err: apperr.New(apperr.UpstreamError, "AI text call failed: 500")}
	_, err := newPlanner(t, m).Plan(context.Background(), solidState())
	assert.Equal(t, apperr.UpstreamError, apperr.KindOf(err))
}

func TestParseSteps_EmptyArray(t *testing.T) {
	steps, err := newPlanner(t, nil).ParseSteps("[]")
	require.NoError(t, err)
	assert.NotNil(t, steps)
	assert.Empty(t, steps)
}

func TestParseSteps_CodeFences(t *testing.T) {
	steps, err := newPlanner(t, nil).ParseSteps("```json\n[{\"move\":\"B\",\"description\":\"\",\"reason\":\"\",\"targetPieces\":[]}]\n```")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "B", steps[0].Move)
}

func TestParseSteps_Failures(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		errPart string
	}{
		{"not json", "Sure! Here is the solution: R U R'", "invalid character"},
		{"python quotes", `[{'move': 'R'}]`, "invalid character"},
		{"object", `{"move":"R"}`, "steps do not match schema"},
		{"bad move token", `[{"move":"X","description":"","reason":"","targetPieces":[]}]`, "move"},
		{"missing field", `[{"move":"R","description":"","reason":""}]`, "targetPieces"},
		{"wrong piece type", `[{"move":"R","description":"","reason":"","targetPieces":[1]}]`, "steps do not match schema"},
		{"extra field", `[{"move":"R","description":"d","reason":"r","targetPieces":["x"],"phase":"cross"}]`, "phase"},
	}
	p := newPlanner(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseSteps(tt.reply)
			require.Error(t, err)
			e := apperr.As(err)
			assert.Equal(t, apperr.SolutionGenerationError, e.Kind)
			assert.True(t, strings.HasPrefix(e.Message, "AI solution generation failed: "))
			assert.Contains(t, e.Message, tt.errPart)
			assert.True(t, strings.HasSuffix(e.Message, "| Raw: "+tt.reply))
		})
	}
}
