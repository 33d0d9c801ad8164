package profiling

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.Entries)
	assert.Nil(t, summary.Avg)
	assert.Nil(t, summary.Median)
	assert.Nil(t, summary.Var)
	assert.Nil(t, summary.Std)

	summary = Summarize([]float64{})
	assert.Equal(t, 0, summary.Entries)
	assert.Nil(t, summary.Avg)
}

func TestSummarize_SingleEntry(t *testing.T) {
	summary := Summarize([]float64{42.5})

	assert.Equal(t, 1, summary.Entries)
	require.NotNil(t, summary.Avg)
	require.NotNil(t, summary.Median)
	assert.Equal(t, 42.5, *summary.Avg)
	assert.Equal(t, 42.5, *summary.Median)
	assert.Nil(t, summary.Var)
	assert.Nil(t, summary.Std)
}

func TestSummarize_FourValues(t *testing.T) {
	summary := Summarize([]float64{1, 2, 3, 4})

	assert.Equal(t, 4, summary.Entries)
	require.NotNil(t, summary.Var)
	require.NotNil(t, summary.Std)
	assert.InDelta(t, 2.5, *summary.Avg, 1e-12)
	assert.InDelta(t, 2.5, *summary.Median, 1e-12)
	assert.InDelta(t, 5.0/3.0, *summary.Var, 1e-12)
	assert.InDelta(t, 1.2909944487358056, *summary.Std, 1e-12)
}

func TestSummarize_OddCountMedianAndUnsortedInput(t *testing.T) {
	input := []float64{9, 1, 5}
	summary := Summarize(input)

	assert.InDelta(t, 5.0, *summary.Median, 1e-12)
	assert.InDelta(t, 5.0, *summary.Avg, 1e-12)
	assert.InDelta(t, 16.0, *summary.Var, 1e-12)
	assert.Equal(t, []float64{9, 1, 5}, input, "input must not be reordered")
}

func TestSummarize_TwoValues(t *testing.T) {
	summary := Summarize([]float64{10, 20})

	assert.InDelta(t, 15.0, *summary.Avg, 1e-12)
	assert.InDelta(t, 15.0, *summary.Median, 1e-12)
	assert.InDelta(t, 50.0, *summary.Var, 1e-12)
	assert.InDelta(t, math.Sqrt(50), *summary.Std, 1e-12)
}

func TestSummarize_ConstantSample(t *testing.T) {
	summary := Summarize([]float64{3, 3, 3})

	assert.Equal(t, 0.0, *summary.Var)
	assert.Equal(t, 0.0, *summary.Std)
}

func TestSummarize_Idempotent(t *testing.T) {
	input := []float64{4, 8, 15, 16, 23, 42}

	first := Summarize(input)
	second := Summarize(input)

	assert.Equal(t, first, second)
}

func TestSummarize_JSONNulls(t *testing.T) {
	raw, err := json.Marshal(Summarize([]float64{7}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":1,"avg":7,"median":7,"var":null,"std":null}`, string(raw))

	raw, err = json.Marshal(Summarize(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":0,"avg":null,"median":null,"var":null,"std":null}`, string(raw))
}

func TestSummarizer_Target(t *testing.T) {
	s := NewSummarizer("Sales")

	assert.Equal(t, "Sales", s.Target())
	assert.Equal(t, Summarize([]float64{1, 2}), s.Summarize([]float64{1, 2}))
}

func TestSummarize_OverflowIsNull(t *testing.T) {
	summary := Summarize([]float64{1e300, -1e300})

	assert.Equal(t, 2, summary.Entries)
	require.NotNil(t, summary.Avg)
	assert.Equal(t, 0.0, *summary.Avg)
	assert.Nil(t, summary.Var)
	assert.Nil(t, summary.Std)

	summary = Summarize([]float64{math.MaxFloat64, math.MaxFloat64})
	assert.Nil(t, summary.Avg)
	assert.Nil(t, summary.Median)

	out, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":2,"avg":null,"median":null,"var":null,"std":null}`, string(out))
}
