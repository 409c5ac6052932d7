package compare

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog2FoldChange(t *testing.T) {
	for _, v := range []struct {
		name    string
		group1  []float64
		group2  []float64
		fc      float64
		defined bool
	}{
		{"zero denominator uses min nonzero / 10", []float64{2, 4, 6}, []float64{0, 0, 0}, math.Log2(20), true},
		{"zero denominator ignores zeros in group1", []float64{0, 4, 8}, []float64{0, 0}, math.Log2(4 / 0.4), true},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0, true},
		{"zero numerator is undefined", []float64{0, 0}, []float64{1, 3}, math.NaN(), false},
		{"plain ratio", []float64{2, 2}, []float64{3, 3}, math.Log2(2.0 / 3.0), true},
		{"negative means are not special", []float64{-2, -2}, []float64{-1, -1}, 1, true},
		{"means of opposite sign are undefined", []float64{2, 2}, []float64{-1, -1}, math.NaN(), false},
		{"negative substitute denominator is undefined", []float64{-2, 4}, []float64{0, 0}, math.NaN(), false},
		{"NaN cells are undefined", []float64{math.NaN(), 2}, []float64{1, 1}, math.NaN(), false},
	} {
		fc, defined := Log2FoldChange(v.group1, v.group2)
		assert.Equal(t, v.defined, defined, v.name)
		if !v.defined {
			assert.True(t, math.IsNaN(fc), v.name)
			continue
		}
		assert.InDelta(t, v.fc, fc, 1e-12, v.name)
	}

	fc, _ := Log2FoldChange([]float64{2, 4, 6}, []float64{0, 0, 0})
	assert.InDelta(t, 4.3219, fc, 1e-4)
}

// Reference p-values computed independently: pooled-variance t-test;
// Mann-Whitney by full enumeration of U when both groups have at most 8 untied
// values, otherwise the normal approximation with tie and continuity
// correction. All two-sided.
func TestPValue(t *testing.T) {
	for _, v := range []struct {
		kind   TestKind
		group1 []float64
		group2 []float64
		p      float64
	}{
		{TTest, []float64{1, 2, 3, 4, 5}, []float64{2, 4, 6, 8, 10}, 0.09434977284243774},
		{TTest, []float64{5.1, 4.9, 6.2, 5.8, 6.0, 5.5}, []float64{4.1, 3.9, 4.5, 4.8, 4.2}, 0.00107678076517117},
		{MannWhitney, []float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10}, 2.0 / 252},
		{MannWhitney, []float64{1, 3, 5}, []float64{2, 4, 6, 7}, 0.4},
		{MannWhitney, []float64{1.5, 2.5, 9, 11, 12, 3}, []float64{4, 5, 6, 7, 8, 10, 13, 14}, 0.41358641358641357},
		{MannWhitney, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, []float64{5.5, 6.5, 7.5, 8.5, 9.5, 10.5, 11.5, 12.5, 13.5}, 0.008071487425268021},
		{MannWhitney, []float64{1, 2, 2, 3, 8}, []float64{2, 5, 6, 6, 9, 10}, 0.11645652984139523},
	} {
		p, err := PValue(v.group1, v.group2, v.kind)
		require.NoError(t, err)
		if math.Abs(p-v.p) > 1e-6 {
			t.Fatalf("\nError with input: %+v\nP: %.12f\nExpected: %.12f\nDiff: %.12f\n", v, p, v.p, p-v.p)
		}
	}
}

func TestPValueSymmetric(t *testing.T) {
	a := []float64{1, 2, 2, 3, 8}
	b := []float64{2, 5, 6, 6, 9, 10}
	for _, kind := range []TestKind{TTest, MannWhitney} {
		p1, err := PValue(a, b, kind)
		require.NoError(t, err)
		p2, err := PValue(b, a, kind)
		require.NoError(t, err)
		assert.InDelta(t, p1, p2, 1e-12, string(kind))
	}
}

func TestPValueDegenerate(t *testing.T) {
	for _, kind := range []TestKind{TTest, MannWhitney} {
		p, err := PValue([]float64{1, 1}, []float64{1, 1}, kind)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(p), string(kind))
	}

	p, err := PValue([]float64{1}, []float64{2}, TTest)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(p))
}

func TestGroupsErrors(t *testing.T) {
	_, err := Groups(nil, []float64{1}, TTest)
	assert.True(t, errors.Is(err, ErrEmptyGroup))

	_, err = Groups([]float64{1}, []float64{}, MannWhitney)
	var eg *EmptyGroupError
	require.True(t, errors.As(err, &eg))
	assert.Equal(t, 2, eg.Group)

	_, err = Groups([]float64{1, 2}, []float64{3, 4}, "fisher")
	assert.True(t, errors.Is(err, ErrUnsupportedTest))
}

func TestGroups(t *testing.T) {
	res, err := Groups([]float64{2, 4, 6}, []float64{0, 0, 0}, TTest)
	require.NoError(t, err)
	assert.True(t, res.FoldChangeDefined)
	assert.InDelta(t, math.Log2(20), res.Log2FC, 1e-12)
	assert.Less(t, res.P, 0.05)
}

func TestUFrequencies(t *testing.T) {
	// 2 vs 2: U takes 0..4 with counts 1,1,2,1,1 over C(4,2)=6 arrangements
	assert.Equal(t, []float64{1, 1, 2, 1, 1}, uFrequencies(2, 2))

	var total float64
	for _, c := range uFrequencies(8, 8) {
		total += c
	}
	assert.Equal(t, 12870.0, total)
}
