package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
)

func TestNewTable_ExactBeforeWildcard(t *testing.T) {
	rules := []ir.Rule{
		{State: "0", Read: '*', Write: 'w', Move: ir.Stay, Next: "halt"},
		{State: "0", Read: '1', Write: 'e', Move: ir.Stay, Next: "halt"},
	}

	table, err := NewTable(rules)
	require.NoError(t, err)

	got := table.Rules()
	require.Len(t, got, 2)
	assert.Equal(t, ir.Symbol('1'), got[0].Read)
	assert.Equal(t, ir.Wildcard, got[1].Read)

	r, ok := table.Lookup("0", '1')
	require.True(t, ok)
	assert.Equal(t, ir.Symbol('e'), r.Write)

	r, ok = table.Lookup("0", '0')
	require.True(t, ok)
	assert.Equal(t, ir.Symbol('w'), r.Write)
}

func TestNewTable_InputOrderDoesNotMatter(t *testing.T) {
	exact := ir.Rule{State: "A", Read: 'x', Write: '1', Move: ir.Right, Next: "B"}
	wild := ir.Rule{State: "A", Read: '*', Write: '2', Move: ir.Left, Next: "C"}

	t1, err := NewTable([]ir.Rule{exact, wild})
	require.NoError(t, err)
	t2, err := NewTable([]ir.Rule{wild, exact})
	require.NoError(t, err)

	assert.Equal(t, t1.Rules(), t2.Rules())
	assert.Equal(t, t1.Hash(), t2.Hash())

	for _, sym := range []ir.Symbol{'x', 'y', ir.Blank} {
		r1, ok1 := t1.Lookup("A", sym)
		r2, ok2 := t2.Lookup("A", sym)
		assert.Equal(t, ok1, ok2)
		assert.Equal(t, r1, r2)
	}
}

func TestNewTable_FirstOfEquallySpecificWins(t *testing.T) {
	table, err := NewTable([]ir.Rule{
		{State: "0", Read: '1', Write: 'a', Move: ir.Stay, Next: "halt"},
		{State: "0", Read: '*', Write: 'c', Move: ir.Stay, Next: "halt"},
		{State: "0", Read: '1', Write: 'b', Move: ir.Stay, Next: "halt"},
		{State: "0", Read: '*', Write: 'd', Move: ir.Stay, Next: "halt"},
	})
	require.NoError(t, err)

	r, ok := table.Lookup("0", '1')
	require.True(t, ok)
	assert.Equal(t, ir.Symbol('a'), r.Write)

	r, ok = table.Lookup("0", '0')
	require.True(t, ok)
	assert.Equal(t, ir.Symbol('c'), r.Write)
}

func TestNewTable_CopiesInput(t *testing.T) {
	rules := []ir.Rule{{State: "0", Read: '0', Write: '1', Move: ir.Right, Next: "halt"}}
	table, err := NewTable(rules)
	require.NoError(t, err)

	rules[0].Write = 'x'
	r, ok := table.Lookup("0", '0')
	require.True(t, ok)
	assert.Equal(t, ir.Symbol('1'), r.Write)
}

func TestNewTable_RejectsReservedState(t *testing.T) {
	_, err := NewTable([]ir.Rule{{State: "*", Read: '0', Write: '1', Move: ir.Right, Next: "halt", Line: 4}})
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeReservedState, le.Code)
	assert.Equal(t, 4, le.Line)
}

func TestNewTable_RejectsBadStateNames(t *testing.T) {
	for _, r := range []ir.Rule{
		{State: "", Read: '0', Write: '1', Next: "halt"},
		{State: "a b", Read: '0', Write: '1', Next: "halt"},
		{State: "0", Read: '0', Write: '1', Next: ""},
	} {
		_, err := NewTable([]ir.Rule{r})
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, ErrCodeBadState, le.Code)
	}
}

func TestNewTable_RejectsUnknownDirection(t *testing.T) {
	_, err := NewTable([]ir.Rule{{State: "0", Read: '0', Write: '1', Move: ir.Direction(9), Next: "halt"}})
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeBadDirection, le.Code)
}

func TestLookup_Missing(t *testing.T) {
	table, err := NewTable([]ir.Rule{{State: "0", Read: '0', Write: '1', Move: ir.Right, Next: "0"}})
	require.NoError(t, err)

	_, ok := table.Lookup("0", '1')
	assert.False(t, ok)
	_, ok = table.Lookup("1", '0')
	assert.False(t, ok)
}

func TestStatesAndTargets(t *testing.T) {
	table, err := ParseString("b 0 1 r a\na 0 1 r *\na 1 1 r halt\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, table.States())
	assert.Equal(t, []string{"a", "halt"}, table.Targets())
	assert.Equal(t, 3, table.Len())
}

func TestText_RoundTrip(t *testing.T) {
	table, err := ParseString("0 * 1 r 0\n0 0 _ l halt\n1 _ * * *\n")
	require.NoError(t, err)

	again, err := ParseString(table.Text())
	require.NoError(t, err)
	assert.Equal(t, table.Hash(), again.Hash())
	assert.Equal(t, "0 0 _ l halt\n0 * 1 r 0\n1 _ * * *\n", table.Text())
}

func TestText_RoundTripMachineDocument(t *testing.T) {
	m, err := ParseYAML([]byte(`rules:
  - {state: "0", read: "a", write: "b", move: r, next: halt}
  - {state: "0", read: "é", write: "*", move: "*", next: "*"}
`))
	require.NoError(t, err)

	again, err := ParseString(m.Table.Text())
	require.NoError(t, err)
	assert.Equal(t, m.Table.Len(), again.Len())
	assert.Equal(t, m.Table.Hash(), again.Hash())
}

func TestNewTable_RejectsWhitespaceSymbols(t *testing.T) {
	for _, rule := range []ir.Rule{
		{State: "0", Read: ' ', Write: '1', Move: ir.Right, Next: "halt"},
		{State: "0", Read: '0', Write: '\n', Move: ir.Right, Next: "halt"},
	} {
		_, err := NewTable([]ir.Rule{rule})
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, ErrCodeBadSymbol, le.Code)
	}
}
