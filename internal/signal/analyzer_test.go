package signal

import (
	"math"
	"strings"
	"testing"
)

func TestAnalyzeNeutralOnEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "the quarterly report is attached"} {
		r := Analyze(text)
		if r.Score != 0 || r.Magnitude != 0 || r.Confidence != 0 || len(r.EmotionTags) != 0 {
			t.Fatalf("expected neutral result for %q, got %+v", text, r)
		}
	}
}

func TestAnalyzePositiveAndNegative(t *testing.T) {
	pos := Analyze("great work, really happy with the progress, thanks")
	if pos.Score <= 0 {
		t.Fatalf("expected positive score, got %f", pos.Score)
	}
	neg := Analyze("this is a terrible failure and I am angry")
	if neg.Score >= 0 {
		t.Fatalf("expected negative score, got %f", neg.Score)
	}
	for _, r := range []Result{pos, neg} {
		if r.Score < -1 || r.Score > 1 {
			t.Fatalf("score out of range: %f", r.Score)
		}
		if r.Magnitude < 0 || r.Magnitude > 1 {
			t.Fatalf("magnitude out of range: %f", r.Magnitude)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Fatalf("confidence out of range: %f", r.Confidence)
		}
	}
}

func TestAnalyzeEmotionTags(t *testing.T) {
	r := Analyze("urgent deadline, feeling stressed and frustrated")
	want := map[string]bool{TagUrgency: false, TagStress: false, TagFrustration: false}
	for _, tag := range r.EmotionTags {
		if _, ok := want[tag]; ok {
			want[tag] = true
		}
	}
	for tag, seen := range want {
		if !seen {
			t.Fatalf("expected tag %s in %v", tag, r.EmotionTags)
		}
	}
	// tags must be deduplicated
	seen := map[string]bool{}
	for _, tag := range r.EmotionTags {
		if seen[tag] {
			t.Fatalf("duplicate tag %s", tag)
		}
		seen[tag] = true
	}
}

func TestDetectStressWeights(t *testing.T) {
	r := DetectStress("stressed about the urgent deadline")
	// stressed=1.0, urgent=0.5, deadline=0.5
	if math.Abs(r.Level-2.0) > 1e-9 {
		t.Fatalf("expected level 2.0, got %f", r.Level)
	}
	if len(r.Indicators) != 3 {
		t.Fatalf("expected 3 indicators, got %v", r.Indicators)
	}
}

func TestDetectStressCappedAtFive(t *testing.T) {
	text := strings.Repeat("overwhelmed exhausted burnout stressed ", 5)
	r := DetectStress(text)
	if r.Level != 5 {
		t.Fatalf("expected cap at 5, got %f", r.Level)
	}
}

func TestAnalyzeBatchAveragesAndUnionsTags(t *testing.T) {
	texts := []string{
		"great progress, thanks",
		"urgent problem, very frustrated",
	}
	batch := AnalyzeBatch(texts)
	a, b := Analyze(texts[0]), Analyze(texts[1])

	wantScore := (a.Score + b.Score) / 2
	if math.Abs(batch.Score-wantScore) > 1e-9 {
		t.Fatalf("expected averaged score %f, got %f", wantScore, batch.Score)
	}

	tagSet := map[string]bool{}
	for _, tag := range append(append([]string{}, a.EmotionTags...), b.EmotionTags...) {
		tagSet[tag] = true
	}
	if len(batch.EmotionTags) != len(tagSet) {
		t.Fatalf("expected union of tags %v, got %v", tagSet, batch.EmotionTags)
	}

	if got := AnalyzeBatch(nil); got.Score != 0 || len(got.EmotionTags) != 0 {
		t.Fatalf("expected zero result for empty batch, got %+v", got)
	}
}
