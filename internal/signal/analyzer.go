// Package signal classifies free text (email subjects and bodies) into
// sentiment, emotion tags and stress indicators using static keyword
// tables. It is a deliberately weak heuristic, kept dependency-free so the
// scoring core works without any NLP service.
package signal

import (
	"sort"
	"strings"
	"unicode"
)

// Result is the sentiment outcome for a piece of text.
type Result struct {
	Score       float64  `json:"score"`      // -1..1
	Magnitude   float64  `json:"magnitude"`  // 0..1
	EmotionTags []string `json:"emotion_tags"`
	Confidence  float64  `json:"confidence"` // 0..1
}

// StressResult is the outcome of the dedicated stress-detection pass.
type StressResult struct {
	Level      float64  `json:"level"` // 0..5
	Indicators []string `json:"indicators"`
}

// Emotion tag categories. Positive/negative drive the score; the rest only
// contribute tags and stress weighting.
const (
	TagPositive    = "positive"
	TagNegative    = "negative"
	TagStress      = "stress"
	TagUrgency     = "urgency"
	TagFrustration = "frustration"
	TagExcitement  = "excitement"
	TagConcern     = "concern"
)

var keywordTable = map[string][]string{
	TagPositive: {
		"great", "good", "excellent", "happy", "glad", "pleased", "thanks",
		"thank", "appreciate", "wonderful", "awesome", "perfect", "love",
		"enjoy", "success", "accomplished", "resolved", "progress",
	},
	TagNegative: {
		"bad", "terrible", "awful", "hate", "angry", "upset", "disappointed",
		"failure", "failed", "problem", "issue", "broken", "wrong", "worse",
		"horrible", "unacceptable", "mistake",
	},
	TagStress: {
		"stressed", "stress", "overwhelmed", "exhausted", "burnout",
		"burned", "pressure", "anxious", "anxiety", "tired", "drained",
		"overloaded", "swamped", "struggling",
	},
	TagUrgency: {
		"urgent", "asap", "immediately", "deadline", "critical", "emergency",
		"now", "rush", "overdue",
	},
	TagFrustration: {
		"frustrated", "frustrating", "annoyed", "annoying", "stuck",
		"blocked", "again", "still", "ridiculous",
	},
	TagExcitement: {
		"excited", "exciting", "thrilled", "amazing", "fantastic",
		"incredible", "celebrate",
	},
	TagConcern: {
		"worried", "concern", "concerned", "unsure", "doubt", "risk",
		"afraid", "nervous", "uncertain",
	},
}

// lookup maps a token to the categories it belongs to. Built once at init.
var lookup = func() map[string][]string {
	m := make(map[string][]string)
	for tag, words := range keywordTable {
		for _, w := range words {
			m[w] = append(m[w], tag)
		}
	}
	return m
}()

// Analyze classifies a single text. It never fails; empty or unmatchable
// input yields the neutral zero result so callers need no error path.
func Analyze(text string) Result {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Result{}
	}

	counts := make(map[string]int, len(keywordTable))
	for _, tok := range tokens {
		for _, tag := range lookup[tok] {
			counts[tag]++
		}
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return Result{}
	}

	score := float64(counts[TagPositive]-counts[TagNegative]) / float64(total)
	score = clamp(score, -1, 1)

	density := float64(total) / float64(len(tokens))
	magnitude := clamp(density, 0, 1)
	confidence := clamp(density*10, 0, 1)

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return Result{
		Score:       score,
		Magnitude:   magnitude,
		EmotionTags: tags,
		Confidence:  confidence,
	}
}

// AnalyzeBatch averages per-text scores, magnitudes and confidences across a
// batch and unions the emotion tags. Empty batches yield the zero result.
func AnalyzeBatch(texts []string) Result {
	if len(texts) == 0 {
		return Result{}
	}
	var sumScore, sumMag, sumConf float64
	tagSet := make(map[string]struct{})
	for _, text := range texts {
		r := Analyze(text)
		sumScore += r.Score
		sumMag += r.Magnitude
		sumConf += r.Confidence
		for _, tag := range r.EmotionTags {
			tagSet[tag] = struct{}{}
		}
	}
	n := float64(len(texts))
	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return Result{
		Score:       sumScore / n,
		Magnitude:   sumMag / n,
		EmotionTags: tags,
		Confidence:  sumConf / n,
	}
}

// DetectStress accumulates a 0-5 stress level: full weight for stress
// keywords, half weight for urgency and frustration. Indicators list the
// matched keywords in order of appearance.
func DetectStress(text string) StressResult {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return StressResult{}
	}

	var level float64
	var indicators []string
	for _, tok := range tokens {
		var weight float64
		for _, tag := range lookup[tok] {
			switch tag {
			case TagStress:
				weight = 1
			case TagUrgency, TagFrustration:
				if weight < 0.5 {
					weight = 0.5
				}
			}
		}
		if weight > 0 {
			level += weight
			indicators = append(indicators, tok)
		}
	}
	if level > 5 {
		level = 5
	}
	return StressResult{Level: level, Indicators: indicators}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
