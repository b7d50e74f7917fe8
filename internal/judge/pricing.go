// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package judge

import "strings"

// modelPricing is USD per million tokens.
type modelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// pricingTable holds published list prices for the models we expect to
// run as judges. Prefix-matched so dated snapshots resolve too.
var pricingTable = map[string]modelPricing{
	"gpt-4o-mini":       {InputPerMTok: 0.150, OutputPerMTok: 0.600},
	"gpt-4o":            {InputPerMTok: 2.50, OutputPerMTok: 10.00},
	"claude-sonnet-4-5": {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"claude-haiku-4-5":  {InputPerMTok: 1.00, OutputPerMTok: 5.00},
	"claude-3-5-haiku":  {InputPerMTok: 0.80, OutputPerMTok: 4.00},
}

// defaultPricing is used for unknown models so costs are tracked rather
// than silently reported as zero.
var defaultPricing = modelPricing{InputPerMTok: 3.00, OutputPerMTok: 15.00}

// pricingFor resolves the price of a model, longest prefix wins.
func pricingFor(model string) modelPricing {
	best := ""
	for prefix := range pricingTable {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return defaultPricing
	}
	return pricingTable[best]
}

// EstimateCost returns the estimated USD cost of one call.
func EstimateCost(model string, inputTokens, outputTokens int64) float64 {
	p := pricingFor(model)
	return float64(inputTokens)/1e6*p.InputPerMTok + float64(outputTokens)/1e6*p.OutputPerMTok
}
