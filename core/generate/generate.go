// Package generate builds persona-styled scripts and keeps the best of several attempts.
package generate

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/voicepersona/core/algo"
	"github.com/huangsam/voicepersona/core/rules"
	"github.com/huangsam/voicepersona/core/scoring"
	"github.com/huangsam/voicepersona/schema"
	"github.com/oklog/ulid/v2"
)

// Generation defaults.
const (
	DefaultMaxRetries     = 3
	DefaultTargetLength   = 30 // seconds, used when neither input nor persona has one
	defaultWordsPerSecond = 3
)

// ErrNoHooks is returned by an attempt when the persona has nothing to open with.
var ErrNoHooks = errors.New("persona has no hooks to open with")

// Config tunes the Generator.
type Config struct {
	MaxRetries                int
	MinAcceptableScore        int // 0 means the persona's authenticity threshold
	EnableRuleValidation      bool
	EnableAuthenticityScoring bool
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:                DefaultMaxRetries,
		EnableRuleValidation:      true,
		EnableAuthenticityScoring: true,
	}
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRand sets the random source used to pick hooks, markers and templates.
func WithRand(r *mrand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithClock sets the clock used for timestamps and script IDs.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithEntropy sets the entropy source for script IDs.
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) { g.entropy = r }
}

// Generator produces scripts in a persona's voice. It is safe for concurrent use.
type Generator struct {
	cfg     Config
	rules   *rules.Engine
	scorer  *scoring.Scorer
	now     func() time.Time
	entropy io.Reader

	mu  sync.Mutex
	rng *mrand.Rand
}

// NewGenerator creates a Generator.
func NewGenerator(cfg Config, engine *rules.Engine, scorer *scoring.Scorer, opts ...Option) *Generator {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if engine == nil {
		engine = rules.NewEngine(rules.DefaultConfig())
	}
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.DefaultConfig())
	}
	g := &Generator{
		cfg:     cfg,
		rules:   engine,
		scorer:  scorer,
		now:     time.Now,
		entropy: rand.Reader,
		rng:     mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// attempt is the outcome of one generation try.
type attempt struct {
	index      int
	script     *schema.GeneratedScript
	violations []schema.Violation
	score      int
	accepted   bool
	err        error
}

// better reports whether a should replace b as the best attempt: a produced script
// beats none, then the higher score wins, then fewer violations, then the earlier attempt.
func better(a, b attempt) bool {
	if (a.script == nil) != (b.script == nil) {
		return a.script != nil
	}
	if a.score != b.score {
		return a.score > b.score
	}
	if len(a.violations) != len(b.violations) {
		return len(a.violations) < len(b.violations)
	}
	return a.index < b.index
}

// bestAttempt folds the attempts into the best one. It reports false when no attempt produced a script.
func bestAttempt(attempts []attempt) (attempt, bool) {
	if len(attempts) == 0 {
		return attempt{}, false
	}
	best := attempts[0]
	for _, a := range attempts[1:] {
		if better(a, best) {
			best = a
		}
	}
	return best, best.script != nil
}

// GenerateScript runs up to MaxRetries attempts and returns the best script. The returned
// error is only set for invalid input; generation failures are reported in the result.
func (g *Generator) GenerateScript(ctx context.Context, input schema.ScriptGenerationInput, persona *schema.PersonaProfile) (schema.ScriptGenerationResult, error) {
	if strings.TrimSpace(input.Topic) == "" {
		return schema.ScriptGenerationResult{}, errors.New("topic must not be empty")
	}
	if persona == nil {
		return schema.ScriptGenerationResult{}, errors.New("persona must not be nil")
	}

	var attempts []attempt
	for i := range g.cfg.MaxRetries {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, attempt{index: i, err: err})
			break
		}
		a := g.attempt(i, input, persona)
		attempts = append(attempts, a)
		if a.accepted {
			break
		}
	}

	best, ok := bestAttempt(attempts)
	if !ok {
		msg := "no attempt produced a script"
		if last := attempts[len(attempts)-1].err; last != nil {
			msg = fmt.Sprintf("%s: %v", msg, last)
		}
		return schema.ScriptGenerationResult{
			Success:  false,
			Attempts: len(attempts),
			Error:    &schema.ResultError{Code: schema.GenerationFailed, Message: msg},
		}, nil
	}

	return schema.ScriptGenerationResult{
		Success:    true,
		Script:     best.script,
		Attempts:   len(attempts),
		Passed:     best.accepted,
		Violations: best.violations,
	}, nil
}

func (g *Generator) attempt(index int, input schema.ScriptGenerationInput, persona *schema.PersonaProfile) attempt {
	target := input.TargetLength
	if target <= 0 {
		target = persona.GenerationParameters.OptimalLength
	}
	if target <= 0 {
		target = DefaultTargetLength
	}

	structure, err := g.compose(index, input, persona, target*defaultWordsPerSecond)
	if err != nil {
		return attempt{index: index, err: err}
	}
	text := structure.Text()
	wordCount := len(algo.Words(text))

	now := g.now()
	id, err := ulid.New(ulid.Timestamp(now), g.entropy)
	if err != nil {
		return attempt{index: index, err: fmt.Errorf("generate script id: %w", err)}
	}

	script := &schema.GeneratedScript{
		ID:        id.String(),
		PersonaID: persona.PersonaID,
		Topic:     input.Topic,
		Script:    text,
		Structure: structure.ScriptStructure,
		Metadata: schema.ScriptMetadata{
			GeneratedAt:  now,
			TargetLength: target,
			ActualLength: float64(wordCount) / defaultWordsPerSecond,
			WordCount:    wordCount,
		},
	}
	res := attempt{index: index, script: script, violations: []schema.Violation{}, accepted: true}

	if g.cfg.EnableRuleValidation {
		params := persona.GenerationParameters
		params.OptimalLength = target
		validation := g.rules.ValidateGeneratedContent(text, persona.VoiceProfile, params, &persona.SpeechPatterns)
		res.violations = validation.Violations
		res.accepted = validation.Valid
	}

	if g.cfg.EnableAuthenticityScoring {
		script.Authenticity = g.scorer.ScoreAuthenticity(text, persona.VoiceProfile, &persona.SpeechPatterns)
		res.score = script.Authenticity.OverallScore
		minScore := g.cfg.MinAcceptableScore
		if minScore <= 0 {
			minScore = persona.GenerationParameters.AuthenticityThreshold
		}
		if res.score < minScore {
			res.accepted = false
		}
	}
	return res
}
