package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
)

func TestNext_ExactMatch(t *testing.T) {
	table := mustTable(t, "0 0 1 r 0\n0 1 1 r halt\n")

	tr, err := Next(table, Config{State: "0", Symbol: '0'})
	require.NoError(t, err)
	assert.Equal(t, ir.Symbol('1'), tr.Rule.Write)
	assert.Equal(t, "0", tr.Next)

	tr, err = Next(table, Config{State: "0", Symbol: '1'})
	require.NoError(t, err)
	assert.Equal(t, "halt", tr.Next)
}

func TestNext_WildcardFallback(t *testing.T) {
	table := mustTable(t, "A * x r B\nA 1 y l C\n")

	tr, err := Next(table, Config{State: "A", Symbol: '1'})
	require.NoError(t, err)
	assert.Equal(t, ir.Symbol('y'), tr.Rule.Write)
	assert.Equal(t, "C", tr.Next)

	for _, sym := range []ir.Symbol{'0', ir.Blank, 'z'} {
		tr, err = Next(table, Config{State: "A", Symbol: sym})
		require.NoError(t, err)
		assert.Equal(t, ir.Symbol('x'), tr.Rule.Write)
		assert.Equal(t, "B", tr.Next)
	}
}

func TestNext_WildcardNextStateKeepsState(t *testing.T) {
	table := mustTable(t, "loop * * r *\n")

	tr, err := Next(table, Config{State: "loop", Symbol: '1'})
	require.NoError(t, err)
	assert.Equal(t, "loop", tr.Next)
}

func TestNext_Missing(t *testing.T) {
	table := mustTable(t, "0 0 1 r 0\n")

	_, err := Next(table, Config{State: "0", Symbol: '1'})
	require.Error(t, err)

	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "0", le.State)
	assert.Equal(t, ir.Symbol('1'), le.Symbol)
	assert.True(t, IsLookupError(err))
	assert.Equal(t, string(ErrCodeMissingRule), ErrorCode(err))
}

func TestNext_Halt(t *testing.T) {
	table := mustTable(t, "halt * 1 r halt\n")

	_, err := Next(table, Config{State: "halt", Symbol: '0'})
	assert.ErrorIs(t, err, ErrHalted)
}
