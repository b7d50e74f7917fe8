// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package drift

import (
	"math"
	"sort"
)

// ksStatistic returns the two-sample Kolmogorov-Smirnov D statistic,
// the maximum distance between the empirical CDFs of a and b. Inputs
// must be sorted ascending.
func ksStatistic(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var (
		i, j int
		d    float64
	)
	na, nb := float64(len(a)), float64(len(b))

	for i < len(a) && j < len(b) {
		// Consume whole tie runs before measuring, so equal values on
		// both sides (common for integer features) never register a gap.
		v := a[i]
		if b[j] < v {
			v = b[j]
		}
		for i < len(a) && a[i] == v {
			i++
		}
		for j < len(b) && b[j] == v {
			j++
		}
		diff := math.Abs(float64(i)/na - float64(j)/nb)
		if diff > d {
			d = diff
		}
	}

	return d
}

// ksPValue approximates the two-sided p-value of a two-sample KS test
// using the asymptotic Kolmogorov distribution.
func ksPValue(d float64, n1, n2 int) float64 {
	if n1 == 0 || n2 == 0 {
		return 1
	}

	en := math.Sqrt(float64(n1) * float64(n2) / float64(n1+n2))
	lambda := (en + 0.12 + 0.11/en) * d
	if lambda <= 0 {
		return 1
	}

	// Q(lambda) = 2 * sum_{j>=1} (-1)^(j-1) * exp(-2 j^2 lambda^2)
	var sum float64
	for j := 1; j <= 100; j++ {
		term := math.Exp(-2 * float64(j) * float64(j) * lambda * lambda)
		if j%2 == 1 {
			sum += term
		} else {
			sum -= term
		}
		if term < 1e-12 {
			break
		}
	}

	p := 2 * sum
	return math.Min(1, math.Max(0, p))
}

// chiSquareStatistic compares observed category counts against counts
// expected from baseline proportions. Returns the statistic and the
// degrees of freedom.
func chiSquareStatistic(baseline, window map[string]int, categories []string) (float64, int) {
	var baseTotal, winTotal int
	for _, c := range categories {
		baseTotal += baseline[c]
		winTotal += window[c]
	}
	if baseTotal == 0 || winTotal == 0 {
		return 0, 0
	}

	var stat float64
	df := -1
	for _, c := range categories {
		expected := float64(baseline[c]) / float64(baseTotal) * float64(winTotal)
		if expected <= 0 {
			continue
		}
		df++
		diff := float64(window[c]) - expected
		stat += diff * diff / expected
	}
	if df < 1 {
		return stat, 0
	}
	return stat, df
}

// chiSquarePValue is the survival function of the chi-square
// distribution: P(X >= x) with df degrees of freedom.
func chiSquarePValue(x float64, df int) float64 {
	if df < 1 || x <= 0 {
		return 1
	}
	return gammaQ(float64(df)/2, x/2)
}

// totalVariation returns the total variation distance between two
// categorical distributions, in [0, 1].
func totalVariation(baseline, window map[string]int, categories []string) float64 {
	var baseTotal, winTotal int
	for _, c := range categories {
		baseTotal += baseline[c]
		winTotal += window[c]
	}
	if baseTotal == 0 || winTotal == 0 {
		return 0
	}

	var dist float64
	for _, c := range categories {
		p := float64(baseline[c]) / float64(baseTotal)
		q := float64(window[c]) / float64(winTotal)
		dist += math.Abs(p - q)
	}
	return dist / 2
}

// gammaQ is the regularized upper incomplete gamma function Q(a, x).
// Series expansion for x < a+1, continued fraction otherwise.
func gammaQ(a, x float64) float64 {
	if x < 0 || a <= 0 {
		return 1
	}
	if x == 0 {
		return 1
	}
	if x < a+1 {
		return 1 - gammaSeriesP(a, x)
	}
	return gammaContinuedQ(a, x)
}

func gammaSeriesP(a, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-12
	)

	ap := a
	sum := 1 / a
	del := sum
	for i := 0; i < maxIter; i++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*eps {
			break
		}
	}
	return sum * math.Exp(-x+a*math.Log(x)-logGamma(a))
}

func gammaContinuedQ(a, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-12
		fpmin   = 1e-300
	)

	b := x + 1 - a
	c := 1 / fpmin
	d := 1 / b
	h := d
	for i := 1; i <= maxIter; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = b + an/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return math.Exp(-x+a*math.Log(x)-logGamma(a)) * h
}

func logGamma(x float64) float64 {
	lg, _ := math.Lgamma(x)
	return lg
}

// mean returns the arithmetic mean, 0 for empty input.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev returns the population standard deviation.
func stddev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// sortedCopy returns a sorted copy of values.
func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
