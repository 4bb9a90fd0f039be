// Package scoring measures how closely a piece of text matches a persona's voice.
package scoring

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/voicepersona/core/algo"
	"github.com/huangsam/voicepersona/schema"
)

// Scoring defaults.
const (
	DefaultMinPassingScore   = 75
	DefaultPenaltyMultiplier = 1.0
)

// Config tunes the Scorer.
type Config struct {
	MinPassingScore   int     `mapstructure:"min-passing-score"`
	PenaltyMultiplier float64 `mapstructure:"penalty-multiplier"`
}

// DefaultConfig returns the scoring defaults.
func DefaultConfig() Config {
	return Config{MinPassingScore: DefaultMinPassingScore, PenaltyMultiplier: DefaultPenaltyMultiplier}
}

// Scorer computes AuthenticityMetrics.
type Scorer struct {
	cfg     Config
	weights map[schema.MetricKey]int
}

// NewScorer creates a Scorer. A non-positive multiplier falls back to 1.
func NewScorer(cfg Config) *Scorer {
	if cfg.PenaltyMultiplier <= 0 {
		cfg.PenaltyMultiplier = DefaultPenaltyMultiplier
	}
	return &Scorer{cfg: cfg, weights: schema.DefaultMetricWeights()}
}

// IsPassing reports whether an overall score reaches the passing mark.
func (s *Scorer) IsPassing(score int) bool {
	return score >= s.cfg.MinPassingScore
}

// ScoreAuthenticity scores content against a profile. Patterns are optional and
// enable the energy comparison of the rhythm metric.
func (s *Scorer) ScoreAuthenticity(content string, profile schema.VoiceProfile, patterns *schema.SpeechPatterns) schema.AuthenticityMetrics {
	m := schema.AuthenticityMetrics{
		HookAccuracy:      s.metric(schema.HookAccuracyKey)(hookAccuracy(content, profile)),
		BridgeFrequency:   s.metric(schema.BridgeFrequencyKey)(bridgeFrequency(content, profile)),
		SentencePatterns:  s.metric(schema.SentencePatternsKey)(sentencePatterns(content, profile)),
		VocabularyMatch:   s.metric(schema.VocabularyMatchKey)(vocabularyMatch(content, profile)),
		RhythmReplication: s.metric(schema.RhythmReplicationKey)(rhythmReplication(content, profile, patterns)),
	}
	m.OverallScore = m.WeightedOverall()
	return m
}

// metric wraps a raw sub-score into a weighted MetricScore.
func (s *Scorer) metric(key schema.MetricKey) func(float64, string) schema.MetricScore {
	return func(raw float64, check string) schema.MetricScore {
		score := schema.Clamp(int(math.Round(raw*s.cfg.PenaltyMultiplier)), 0, 100)
		return schema.MetricScore{Weight: s.weights[key], Score: score, Check: check}
	}
}

func hookAccuracy(content string, profile schema.VoiceProfile) (float64, string) {
	text := algo.Fold(content)
	var first string
	if sentences := algo.SplitSentences(content); len(sentences) > 0 {
		first = sentences[0]
	}
	foldedFirst := algo.Fold(first)

	found := 0
	for _, h := range profile.Hooks {
		hook := strings.TrimSpace(algo.Fold(h))
		if hook == "" {
			continue
		}
		if strings.Contains(foldedFirst, hook) || strings.Contains(text, hook) {
			found++
		}
	}

	var score float64
	switch {
	case found >= 2:
		score = 100
	case found == 1:
		score = 70
	}
	check := fmt.Sprintf("%d of %d hooks found", found, len(profile.Hooks))
	if formal := algo.FormalWordsOutsideVocabulary(first, profile.VocabularyFingerprint); len(formal) > 0 {
		score -= 30
		check += fmt.Sprintf("; formal opening (%s)", strings.Join(formal, ", "))
	}
	return score, check
}

func bridgeFrequency(content string, profile schema.VoiceProfile) (float64, string) {
	if len(profile.Bridges) == 0 {
		return 80, "no bridges to match"
	}
	wordCount := float64(len(algo.Words(content)))

	phrases := make([]string, 0, len(profile.Bridges))
	for p := range profile.Bridges {
		phrases = append(phrases, p)
	}
	slices.Sort(phrases)

	expected, actual := 0, 0
	for _, p := range phrases {
		expected += max(1, int(math.Round(wordCount/100*float64(profile.Bridges[p])/10)))
		actual += algo.CountOccurrences(content, p)
	}

	ratio := float64(actual) / float64(expected)
	check := fmt.Sprintf("%d of %d expected bridges", actual, expected)
	switch {
	case ratio >= 0.8:
		return 100, check
	case ratio >= 0.5:
		return 80, check
	case ratio >= 0.2:
		return 60, check
	default:
		return 30, check
	}
}

func sentencePatterns(content string, profile schema.VoiceProfile) (float64, string) {
	joined := strings.ToLower(strings.Join(profile.SentencePatterns, " "))
	avg := algo.AverageSentenceLength(content)
	sentences := len(algo.SplitSentences(content))

	score := 70.0
	if strings.Contains(joined, "short") {
		if avg < 10 {
			score += 15
		} else {
			score -= 10
		}
	}
	if strings.Contains(joined, "complex") {
		if avg > 15 {
			score += 15
		} else {
			score -= 10
		}
	}
	if sentences > 0 {
		if strings.Contains(joined, "exclamation") && float64(algo.CountExclamations(content))/float64(sentences) > 0.2 {
			score += 10
		}
		if strings.Contains(joined, "question") && float64(algo.CountQuestions(content))/float64(sentences) > 0.1 {
			score += 5
		}
	}
	return score, fmt.Sprintf("average %.1f words per sentence", avg)
}

func vocabularyMatch(content string, profile schema.VoiceProfile) (float64, string) {
	words := make(map[string]struct{})
	for _, tok := range algo.Tokenize(content) {
		if utf8.RuneCountInString(tok) > 3 {
			words[tok] = struct{}{}
		}
	}

	fingerprint := make(map[string]struct{}, len(profile.VocabularyFingerprint))
	matches := 0
	for _, w := range profile.VocabularyFingerprint {
		key := algo.Fold(w)
		fingerprint[key] = struct{}{}
		if _, ok := words[key]; ok {
			matches++
		}
	}

	score := 0.0
	if len(profile.VocabularyFingerprint) > 0 {
		score = float64(matches) / float64(len(profile.VocabularyFingerprint)) * 100
	}
	if matches >= 5 {
		score += 10
	}
	if len(words) > 0 {
		outside := 0
		for w := range words {
			if _, ok := fingerprint[w]; !ok {
				outside++
			}
		}
		if float64(outside)/float64(len(words)) > 0.8 {
			score -= 20
		}
	}
	return score, fmt.Sprintf("%d of %d fingerprint words used", matches, len(profile.VocabularyFingerprint))
}

func rhythmReplication(content string, profile schema.VoiceProfile, patterns *schema.SpeechPatterns) (float64, string) {
	rhythm := strings.ToLower(profile.RhythmPattern)
	avg := algo.AverageSentenceLength(content)

	score := 70.0
	var notes []string
	if (strings.Contains(rhythm, "fast") && avg < 8) || (strings.Contains(rhythm, "slow") && avg > 12) {
		score += 15
		notes = append(notes, "pace matches")
	}

	if patterns != nil {
		level := contentEnergy(content)
		if level == patterns.Baseline.TypicalEnergy {
			score += 10
			notes = append(notes, fmt.Sprintf("%s energy matches", level))
		}
	}

	present := 0
	for _, el := range profile.SignatureElements {
		if algo.ContainsPhrase(content, el) {
			present++
		}
	}
	switch {
	case present >= 2:
		score += 10
	case present == 0:
		score -= 15
	}
	notes = append(notes, fmt.Sprintf("%d signature elements", present))
	return score, strings.Join(notes, "; ")
}

// contentEnergy classifies caps words plus exclamations as a percentage of words.
func contentEnergy(content string) schema.EnergyLevel {
	words := len(algo.Words(content))
	if words == 0 {
		return schema.LowEnergy
	}
	pct := float64(algo.CountCapsWords(content)+algo.CountExclamations(content)) / float64(words) * 100
	switch {
	case pct > 2:
		return schema.HighEnergy
	case pct < 1:
		return schema.LowEnergy
	default:
		return schema.MediumEnergy
	}
}
