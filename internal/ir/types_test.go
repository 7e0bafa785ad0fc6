package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		field string
		want  Direction
	}{
		{"l", Left},
		{"r", Right},
		{"*", Stay},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := ParseDirection(tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.field, got.Notation())
		})
	}

	for _, bad := range []string{"L", "x", "", "rr", "s"} {
		_, err := ParseDirection(bad)
		assert.Error(t, err, "direction %q should be rejected", bad)
	}
}

func TestParseSymbol(t *testing.T) {
	sym, ok := ParseSymbol("1")
	require.True(t, ok)
	assert.Equal(t, Symbol('1'), sym)

	sym, ok = ParseSymbol("λ")
	require.True(t, ok)
	assert.Equal(t, Symbol('λ'), sym)

	_, ok = ParseSymbol("ab")
	assert.False(t, ok)
	_, ok = ParseSymbol("")
	assert.False(t, ok)
	_, ok = ParseSymbol("\xff")
	assert.False(t, ok)
}

func TestRuleMatches(t *testing.T) {
	exact := Rule{State: "0", Read: '1', Write: '0', Move: Right, Next: "0"}
	wild := Rule{State: "0", Read: Wildcard, Write: Wildcard, Move: Stay, Next: "halt"}

	assert.True(t, exact.Matches("0", '1'))
	assert.False(t, exact.Matches("0", '0'))
	assert.False(t, exact.Matches("1", '1'))

	assert.True(t, wild.Matches("0", '1'))
	assert.True(t, wild.Matches("0", Blank))
	assert.False(t, wild.Matches("A", '1'))
}

func TestRuleResolve(t *testing.T) {
	keep := Rule{State: "A", Next: WildcardState}
	assert.Equal(t, "A", keep.Resolve("A"))

	jump := Rule{State: "A", Next: "B"}
	assert.Equal(t, "B", jump.Resolve("A"))
}

func TestRuleString(t *testing.T) {
	r := Rule{State: "0", Read: '_', Write: '1', Move: Left, Next: "halt"}
	assert.Equal(t, "0 _ 1 l halt", r.String())
}

func TestStepJSONUsesNotation(t *testing.T) {
	step := Step{
		Seq:   1,
		State: "0",
		Read:  '0',
		Rule:  Rule{State: "0", Read: '0', Write: '1', Move: Right, Next: "0"},
		Head:  1,
		Next:  "0",
	}

	data, err := json.Marshal(step)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"seq": 1, "state": "0", "read": "0", "head": 1, "next": "0",
		"rule": {"state": "0", "read": "0", "write": "1", "move": "r", "next": "0"}
	}`, string(data))

	var decoded Step
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, step, decoded)
}
