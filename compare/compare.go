// Package compare tests whether a quantity differs between two groups of
// samples and reports the log2 fold-change of the group means.
package compare

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestKind selects the two-sample test.
type TestKind string

const (
	// TTest is Student's two-sample t-test with pooled variance.
	TTest TestKind = "tt"

	// MannWhitney is the Mann-Whitney U test: exact for small samples without
	// ties, otherwise the normal approximation with tie and continuity
	// correction.
	MannWhitney TestKind = "mw"
)

// Result of comparing two groups. P is NaN when the test is undefined for the
// data, e.g. both groups are constant. When FoldChangeDefined is false, Log2FC
// is NaN and should be reported as NA.
type Result struct {
	P                 float64
	Log2FC            float64
	FoldChangeDefined bool
}

// Groups runs the requested test on group1 versus group2 and computes the
// log2 fold-change of group1 over group2.
func Groups(group1, group2 []float64, kind TestKind) (Result, error) {
	p, err := PValue(group1, group2, kind)
	if err != nil {
		return Result{}, err
	}

	fc, defined := Log2FoldChange(group1, group2)

	return Result{P: p, Log2FC: fc, FoldChangeDefined: defined}, nil
}

// PValue returns the two-sided p-value of the selected test.
func PValue(group1, group2 []float64, kind TestKind) (float64, error) {
	if err := checkGroups(group1, group2); err != nil {
		return math.NaN(), err
	}

	switch kind {
	case TTest:
		return studentT(group1, group2), nil
	case MannWhitney:
		return mannWhitney(group1, group2), nil
	}

	return math.NaN(), &UnsupportedTestError{Kind: kind}
}

func checkGroups(group1, group2 []float64) error {
	if len(group1) == 0 {
		return &EmptyGroupError{Group: 1}
	}
	if len(group2) == 0 {
		return &EmptyGroupError{Group: 2}
	}
	return nil
}

// Log2FoldChange is log2(mean(group1)/mean(group2)) with explicit handling of
// zero means, checked in this order:
//
//   - both means are 0: 0
//   - only mean(group1) is 0: undefined (NaN, false)
//   - only mean(group2) is 0: the denominator is the smallest non-zero value of
//     group1 divided by 10
//   - otherwise the plain ratio
//
// Empty groups are undefined, as is any ratio whose log2 is not finite
// (means of opposite sign, a negative substitute denominator, NaN cells).
func Log2FoldChange(group1, group2 []float64) (float64, bool) {
	mean1, err := stats.Mean(group1)
	if err != nil {
		return math.NaN(), false
	}
	mean2, err := stats.Mean(group2)
	if err != nil {
		return math.NaN(), false
	}

	switch {
	case mean1 == 0 && mean2 == 0:
		return 0, true
	case mean1 == 0:
		return math.NaN(), false
	case mean2 == 0:
		nonzero := make(stats.Float64Data, 0, len(group1))
		for _, v := range group1 {
			if v != 0 {
				nonzero = append(nonzero, v)
			}
		}
		// mean1 != 0 guarantees at least one non-zero value
		smallest, err := nonzero.Min()
		if err != nil {
			return math.NaN(), false
		}
		return finiteLog2(mean1 / (smallest / 10))
	}

	return finiteLog2(mean1 / mean2)
}

func finiteLog2(ratio float64) (float64, bool) {
	fc := math.Log2(ratio)
	if math.IsNaN(fc) || math.IsInf(fc, 0) {
		return math.NaN(), false
	}
	return fc, true
}

func studentT(group1, group2 []float64) float64 {
	n1, n2 := float64(len(group1)), float64(len(group2))
	df := n1 + n2 - 2
	if df < 1 {
		return math.NaN()
	}

	pooled := (sumSquares(group1) + sumSquares(group2)) / df
	t := (stat.Mean(group1, nil) - stat.Mean(group2, nil)) / math.Sqrt(pooled*(1/n1+1/n2))
	if math.IsNaN(t) {
		return math.NaN()
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.CDF(-math.Abs(t))
}

// sumSquares is the sum of squared deviations from the mean, (n-1)*variance.
func sumSquares(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.Variance(x, nil) * float64(len(x)-1)
}

func mannWhitney(group1, group2 []float64) float64 {
	n1, n2 := float64(len(group1)), float64(len(group2))
	ranks, ties := midranks(group1, group2)

	var r1 float64
	for _, r := range ranks[:len(group1)] {
		r1 += r
	}
	u1 := r1 - n1*(n1+1)/2
	u := math.Max(u1, n1*n2-u1)

	if len(group1) <= exactMaxGroupSize && len(group2) <= exactMaxGroupSize && ties == 0 {
		return exactMannWhitney(len(group1), len(group2), u)
	}

	n := n1 + n2
	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 / 12 * ((n + 1) - ties/(n*(n-1))))
	if sigma == 0 || math.IsNaN(sigma) {
		return math.NaN()
	}

	z := (u - mu - 0.5) / sigma
	return math.Min(1, 2*distuv.UnitNormal.Survival(z))
}

// exactMaxGroupSize is the largest group for which the exact U distribution is
// used.
const exactMaxGroupSize = 8

// exactMannWhitney is the two-sided p-value 2*P(U >= u) under the exact null
// distribution of U for groups of n1 and n2 untied values.
func exactMannWhitney(n1, n2 int, u float64) float64 {
	freq := uFrequencies(n1, n2)

	var total, tail float64
	for k, count := range freq {
		total += count
		if float64(k) >= u {
			tail += count
		}
	}

	return math.Min(1, 2*tail/total)
}

// uFrequencies counts, for each k in 0..n1*n2, the arrangements of n1 and n2
// untied values whose U statistic equals k. It uses the recurrence
// f(i, j, k) = f(i-1, j, k-j) + f(i, j-1, k).
func uFrequencies(n1, n2 int) []float64 {
	// prev[j] is f(i-1, j, .) and cur[j] is f(i, j, .)
	prev := make([][]float64, n2+1)
	for j := range prev {
		prev[j] = []float64{1}
	}

	for i := 1; i <= n1; i++ {
		cur := make([][]float64, n2+1)
		cur[0] = []float64{1}
		for j := 1; j <= n2; j++ {
			f := make([]float64, i*j+1)
			for k, count := range prev[j] {
				f[k+j] += count
			}
			for k, count := range cur[j-1] {
				f[k] += count
			}
			cur[j] = f
		}
		prev = cur
	}

	return prev[n2]
}

// midranks assigns 1-based ranks to the concatenation of a and b, averaging
// the ranks of tied values. It also returns the tie term sum(t^3 - t) over all
// groups of t tied values.
func midranks(a, b []float64) ([]float64, float64) {
	values := append(append(make([]float64, 0, len(a)+len(b)), a...), b...)
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return values[order[i]] < values[order[j]] })

	ranks := make([]float64, len(values))
	var ties float64
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && values[order[j+1]] == values[order[i]] {
			j++
		}
		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = rank
		}
		t := float64(j - i + 1)
		ties += t*t*t - t
		i = j + 1
	}

	return ranks, ties
}
