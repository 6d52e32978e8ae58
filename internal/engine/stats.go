package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// numericOnly extracts the Number cells of a slice. Text and missing cells
// are excluded from sums and means, never coerced to zero.
func numericOnly(vals []Value) []float64 {
	var out []float64
	for _, v := range vals {
		if v.Kind == Number {
			out = append(out, v.Num)
		}
	}
	return out
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return sum(xs) / float64(len(xs)), true
}

// meanOrNil is mean for view models: nil when there is nothing to average,
// so an absent mean is distinguishable from a true zero.
func meanOrNil(xs []float64) *float64 {
	if m, ok := mean(xs); ok {
		return &m
	}
	return nil
}

// countValue boxes a fallback row count for the same view-model fields.
func countValue(n int) *float64 {
	v := float64(n)
	return &v
}

// sortKey orders optional means with nil last in a descending sort.
func sortKey(p *float64) float64 {
	if p == nil {
		return math.Inf(-1)
	}
	return *p
}

// pearson computes the correlation of two equal-length samples. Returns 0
// for degenerate inputs (fewer than 2 points or zero variance) so results
// stay JSON-encodable.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mx, _ := mean(xs)
	my, _ := mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

// quantile interpolates linearly between order statistics, matching the
// convention charting libraries expect for box plots. xs must be non-empty;
// it is sorted in place.
func quantile(xs []float64, q float64) float64 {
	sort.Float64s(xs)
	if len(xs) == 1 {
		return xs[0]
	}
	pos := q * float64(len(xs)-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= len(xs) {
		return xs[len(xs)-1]
	}
	return xs[lo] + frac*(xs[lo+1]-xs[lo])
}

// FormatCurrency renders a KPI amount as $1,234.56.
func FormatCurrency(x float64) string {
	neg := x < 0
	s := strconv.FormatFloat(math.Abs(x), 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}
