// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package inference

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/sentibr/sentibr/internal/models"
)

// lexicon maps Portuguese terms to sentiment weights. Positive weights lean
// positive, negative weights lean negative. Strong terms carry weight 2.
var lexicon = map[string]float64{
	// Positive - food quality
	"bom": 1, "boa": 1, "gostoso": 1, "gostosa": 1, "saboroso": 1, "saborosa": 1,
	"delicioso": 2, "deliciosa": 2, "excelente": 2, "maravilhoso": 2, "maravilhosa": 2,
	"perfeito": 2, "perfeita": 2, "incrível": 2, "ótimo": 2, "ótima": 2,
	"fresco": 1, "fresca": 1, "quente": 1, "caprichado": 1, "caprichada": 1,
	"top": 1, "show": 1, "nota": 1, "recomendo": 2, "amei": 2, "adorei": 2,
	"gostei": 1, "satisfeito": 1, "satisfeita": 1, "generoso": 1, "generosa": 1,
	"farta": 1, "farto": 1, "honesto": 1, "justa": 1, "justo": 1,

	// Positive - delivery experience
	"rápido": 1, "rápida": 1, "pontual": 1, "adiantado": 1, "educado": 1,
	"educada": 1, "atencioso": 1, "atenciosa": 1, "simpático": 1, "simpática": 1,
	"cordial": 1, "eficiente": 1, "organizado": 1, "embalado": 1, "lacrado": 1,

	// Negative - food quality
	"ruim": -1, "ruins": -1, "horrível": -2, "horroroso": -2, "péssimo": -2,
	"péssima": -2, "terrível": -2, "nojento": -2, "nojenta": -2, "intragável": -2,
	"frio": -1, "fria": -1, "gelado": -1, "gelada": -1, "queimado": -1,
	"queimada": -1, "cru": -1, "crua": -1, "azedo": -1, "azeda": -1,
	"estragado": -2, "estragada": -2, "velho": -1, "velha": -1, "duro": -1,
	"dura": -1, "seco": -1, "seca": -1, "sem-graça": -1, "insosso": -1,
	"salgado": -1, "murcho": -1, "murcha": -1, "pequeno": -1, "pequena": -1,
	"minúsculo": -2, "caro": -1, "cara": -1, "absurdo": -2, "decepção": -2,
	"decepcionante": -2, "decepcionado": -2, "decepcionada": -2,

	// Negative - delivery experience
	"atrasado": -1, "atrasada": -1, "atraso": -1, "demorou": -1, "demorado": -1,
	"demorada": -1, "demora": -1, "errado": -1, "errada": -1, "faltou": -1,
	"faltando": -1, "esqueceram": -1, "trocado": -1, "trocada": -1,
	"derramado": -1, "amassado": -1, "amassada": -1, "vazou": -1, "vazado": -1,
	"grosso": -1, "grossa": -1, "grosseiro": -2, "grosseira": -2, "mal": -1,
	"cancelaram": -2, "cancelado": -1, "nunca": -1, "lixo": -2, "vergonha": -2,
	"horror": -2, "odiei": -2, "detestei": -2, "reclamação": -1, "reembolso": -1,
}

// negations flip the polarity of the following terms.
var negations = map[string]bool{
	"não": true, "nao": true, "nunca": true, "jamais": true, "nem": true,
	"sem": true,
}

// intensifiers scale the weight of the following term.
var intensifiers = map[string]float64{
	"muito": 1.5, "muita": 1.5, "demais": 1.5, "super": 1.5, "bem": 1.3,
	"extremamente": 2, "totalmente": 1.5, "completamente": 1.5, "bastante": 1.3,
	"meio": 0.5, "pouco": 0.5, "levemente": 0.5,
}

// negationWindow is how many preceding tokens a negation covers.
const negationWindow = 2

// LexiconClassifier scores text against the Portuguese sentiment lexicon.
// It is deterministic, allocation-light and needs no external service, so it
// doubles as the fallback backend and the explanation source.
type LexiconClassifier struct{}

// NewLexiconClassifier returns a ready classifier.
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{}
}

// Classify implements Classifier.
func (c *LexiconClassifier) Classify(_ context.Context, text string) (Prediction, error) {
	terms := c.score(text)
	return toPrediction(terms), nil
}

// ClassifyBatch implements Classifier.
func (c *LexiconClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	results := make([]Prediction, len(texts))
	for i, text := range texts {
		p, err := c.Classify(ctx, text)
		if err != nil {
			return nil, err
		}
		results[i] = p
	}
	return results, nil
}

// Explain returns the per-term contributions for a text, strongest first.
func (c *LexiconClassifier) Explain(text string) models.ExplainResponse {
	terms := c.score(text)
	pred := toPrediction(terms)

	out := make([]models.TermWeight, 0, len(terms))
	for _, tw := range terms {
		sentiment := models.SentimentPositive
		if tw.weight < 0 {
			sentiment = models.SentimentNegative
		}
		out = append(out, models.TermWeight{
			Term:      tw.term,
			Weight:    tw.weight,
			Sentiment: sentiment,
			Negated:   tw.negated,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Weight, out[j].Weight
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		if ai != aj {
			return ai > aj
		}
		return out[i].Term < out[j].Term
	})

	return models.ExplainResponse{
		Sentiment: pred.Sentiment,
		Score:     pred.Confidence,
		Terms:     out,
	}
}

// scoredTerm is one lexicon hit with its final (negated, intensified) weight.
type scoredTerm struct {
	term    string
	weight  float64
	negated bool
}

// score tokenizes the text and collects lexicon hits.
func (c *LexiconClassifier) score(text string) []scoredTerm {
	tokens := tokenize(text)
	var hits []scoredTerm

	for i, tok := range tokens {
		base, ok := lexicon[tok]
		if !ok {
			continue
		}

		weight := base

		// Intensifier immediately before the term scales it.
		if i > 0 {
			if mult, ok := intensifiers[tokens[i-1]]; ok {
				weight *= mult
			}
		}

		// Negation within the window flips polarity.
		negated := false
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			if negations[tokens[j]] {
				weight = -weight
				negated = true
				break
			}
		}

		hits = append(hits, scoredTerm{term: tok, weight: weight, negated: negated})
	}

	return hits
}

// toPrediction converts term hits into normalized class probabilities.
// A constant neutral prior keeps texts without lexicon hits neutral.
func toPrediction(terms []scoredTerm) Prediction {
	var pos, neg float64
	for _, t := range terms {
		if t.weight > 0 {
			pos += t.weight
		} else {
			neg -= t.weight
		}
	}

	// Below any single lexicon hit, so one clear cue decides the label
	// while texts without cues stay neutral.
	const neutralPrior = 0.8
	total := pos + neg + neutralPrior

	probs := map[string]float64{
		models.SentimentNegative: neg / total,
		models.SentimentNeutral:  neutralPrior / total,
		models.SentimentPositive: pos / total,
	}

	sentiment := models.SentimentNeutral
	confidence := probs[models.SentimentNeutral]
	if probs[models.SentimentPositive] > confidence {
		sentiment = models.SentimentPositive
		confidence = probs[models.SentimentPositive]
	}
	if probs[models.SentimentNegative] > confidence {
		sentiment = models.SentimentNegative
		confidence = probs[models.SentimentNegative]
	}

	return Prediction{
		Sentiment:     sentiment,
		Confidence:    confidence,
		Probabilities: probs,
		Source:        SourceLexicon,
	}
}

// tokenize lowercases and splits on non-letter runes, keeping intra-word
// hyphens so compound lexicon entries like "sem-graça" survive.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
}
