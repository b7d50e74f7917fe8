// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package judge

import (
	"math"
	"testing"
)

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		model  string
		input  int64
		output int64
		want   float64
	}{
		{"gpt-4o-mini", "gpt-4o-mini", 1_000_000, 1_000_000, 0.150 + 0.600},
		{"dated snapshot resolves by prefix", "gpt-4o-mini-2024-07-18", 2_000_000, 0, 0.300},
		{"sonnet", "claude-sonnet-4-5-20250929", 1_000_000, 100_000, 3.00 + 1.50},
		{"unknown model uses fallback", "some-future-model", 1_000_000, 0, 3.00},
		{"zero tokens", "gpt-4o-mini", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EstimateCost(tt.model, tt.input, tt.output)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %.6f, got %.6f", tt.want, got)
			}
		})
	}
}

func TestPricingForPrefersLongestPrefix(t *testing.T) {
	t.Parallel()

	// gpt-4o-mini must not resolve to the gpt-4o price.
	p := pricingFor("gpt-4o-mini-2024-07-18")
	if p.InputPerMTok != 0.150 {
		t.Errorf("expected mini pricing, got input rate %.3f", p.InputPerMTok)
	}
}
