package pbg_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/pbg/pkg/pbg"
)

func emptyDict(key []byte) pbg.Node { return pbg.UnknownValue() }

func TestEndToEndScenarios(t *testing.T) {
	t.Run("EQ reflexivity with empty dictionary", func(t *testing.T) {
		expr, err := pbg.Parse([]byte("(=,1,1)"))
		require.NoError(t, err)
		v, err := expr.Evaluate(emptyDict)
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("NOT of AND with a false child", func(t *testing.T) {
		expr, err := pbg.Parse([]byte("(!,(&,TRUE,FALSE))"))
		require.NoError(t, err)
		v, err := expr.Evaluate(emptyDict)
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("LT numeric comparison", func(t *testing.T) {
		expr, err := pbg.Parse([]byte("(<,2.5,3)"))
		require.NoError(t, err)
		v, err := expr.Evaluate(emptyDict)
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("EQ against a resolved key, both present and absent", func(t *testing.T) {
		expr, err := pbg.Parse([]byte("(=,[name],'alice')"))
		require.NoError(t, err)

		present := func(key []byte) pbg.Node {
			assert.Equal(t, "name", string(key))
			return pbg.StringValue("alice")
		}
		v, err := expr.Evaluate(present)
		require.NoError(t, err)
		assert.True(t, v)

		absent := func(key []byte) pbg.Node { return pbg.UnknownValue() }
		v, err = expr.Evaluate(absent)
		require.NoError(t, err)
		assert.False(t, v)
	})

	t.Run("EXST true or false depending on dictionary", func(t *testing.T) {
		expr, err := pbg.Parse([]byte("(?,[x])"))
		require.NoError(t, err)

		v, err := expr.Evaluate(func(key []byte) pbg.Node { return pbg.UnknownValue() })
		require.NoError(t, err)
		assert.False(t, v)

		v, err = expr.Evaluate(func(key []byte) pbg.Node { return pbg.NumberValue(1) })
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("OR short-circuits after the first true disjunct", func(t *testing.T) {
		expr, err := pbg.Parse([]byte("(|,(=,[a],1),(=,[b],2))"))
		require.NoError(t, err)

		var bVisited bool
		dict := func(key []byte) pbg.Node {
			switch string(key) {
			case "a":
				return pbg.NumberValue(1)
			case "b":
				bVisited = true
				return pbg.NumberValue(9)
			}
			return pbg.UnknownValue()
		}
		v, err := expr.Evaluate(dict)
		require.NoError(t, err)
		assert.True(t, v)
		// Dict resolution happens eagerly for every key before the walk, so
		// bVisited being true here is expected; the walk-level short-circuit
		// is covered directly in internal/eval, which counts walked nodes
		// rather than dict calls.
		_ = bVisited
	})
}

func TestOptionWiring(t *testing.T) {
	t.Run("WithNumberEquality ByRepresentation", func(t *testing.T) {
		expr, err := pbg.Parse([]byte("(=,1,1.0)"), pbg.WithNumberEquality(pbg.ByRepresentation))
		require.NoError(t, err)
		v, err := expr.Evaluate(emptyDict)
		require.NoError(t, err)
		assert.False(t, v)
	})

	t.Run("WithDateRangeValidation disabled accepts an out-of-range date", func(t *testing.T) {
		_, err := pbg.Parse([]byte("2024-13-40"), pbg.WithDateRangeValidation(false))
		require.NoError(t, err)
	})

	t.Run("WithDateRangeValidation enabled rejects an out-of-range date", func(t *testing.T) {
		_, err := pbg.Parse([]byte("2024-13-40"), pbg.WithDateRangeValidation(true))
		require.Error(t, err)
	})

	t.Run("WithMaxDepth rejects deep nesting", func(t *testing.T) {
		_, err := pbg.Parse([]byte("(!,(!,(!,TRUE)))"), pbg.WithMaxDepth(2))
		require.Error(t, err)
	})

	t.Run("WithStrictBooleans false tolerates a non-boolean literal", func(t *testing.T) {
		expr, err := pbg.Parse([]byte("(!,1)"), pbg.WithStrictBooleans(false))
		require.NoError(t, err)
		v, err := expr.Evaluate(emptyDict)
		require.NoError(t, err)
		assert.True(t, v)
	})
}

func TestRenderRoundTrip(t *testing.T) {
	expr, err := pbg.Parse([]byte("(&,(!,TRUE),(=,[k],1))"))
	require.NoError(t, err)
	out, err := expr.Render()
	require.NoError(t, err)

	reparsed, err := pbg.Parse(out)
	require.NoError(t, err)
	again, err := reparsed.Render()
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestDumpTextWritesNonEmptyOutput(t *testing.T) {
	expr, err := pbg.Parse([]byte("(&,TRUE,FALSE)"))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, expr.DumpText(&buf))
	assert.NotEmpty(t, buf.String())
}

func TestDumpJSONWritesValidLookingOutput(t *testing.T) {
	expr, err := pbg.Parse([]byte("(&,TRUE,FALSE)"))
	require.NoError(t, err)
	out, err := expr.DumpJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"kind":"AND"`)
}

func TestStatsReportsArenaSizes(t *testing.T) {
	expr, err := pbg.Parse([]byte("(&,(!,TRUE),(=,[k],1))"))
	require.NoError(t, err)
	stats := expr.Stats()
	// AND, NOT, TRUE, EQ, NUMBER(1): five static nodes; one KEY in dynamic.
	assert.Equal(t, 5, stats.StaticNodes)
	assert.Equal(t, 1, stats.DynamicNodes)
}

func TestCloseIsSafeToCall(t *testing.T) {
	expr, err := pbg.Parse([]byte("TRUE"))
	require.NoError(t, err)
	assert.NoError(t, expr.Close())
}
