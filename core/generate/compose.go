package generate

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/huangsam/voicepersona/core/algo"
	"github.com/huangsam/voicepersona/core/rules"
	"github.com/huangsam/voicepersona/schema"
)

// hookTemplates receive the hook and the topic.
var hookTemplates = []string{
	"%s, we need to talk about %s.",
	"%s. This one is about %s.",
	"%s, because %s deserves a minute.",
}

// padTemplates receive a vocabulary word and the topic.
var padTemplates = []string{
	"%s is a bigger part of %s than people think.",
	"Nobody mentions %s when they talk about %s.",
	"%s changed how I see %s.",
	"Once %s clicks, %s gets easier.",
	"Start with %s and %s follows.",
}

// fallbackVocabulary fills core sentences when the fingerprint runs out.
var fallbackVocabulary = []string{"timing", "practice", "details", "patience", "basics", "consistency"}

// Energy-conditioned escalation templates and calls to action.
var (
	escalationTemplates = map[schema.EnergyLevel]string{
		schema.HighEnergy:   "%s! This changes EVERYTHING!",
		schema.MediumEnergy: "%s, and it only gets better from here.",
		schema.LowEnergy:    "%s, and that is worth sitting with.",
	}
	callsToAction = map[schema.EnergyLevel]string{
		schema.HighEnergy:   "Follow NOW for part two!",
		schema.MediumEnergy: "Follow for more like this.",
		schema.LowEnergy:    "Save this for later.",
	}
)

// composed is a script structure with the joined text.
type composed struct {
	schema.ScriptStructure
}

// Text joins the five parts into the script body.
func (c composed) Text() string {
	parts := []string{c.Hook, c.Bridge, c.CoreMessage, c.Escalation, c.Close}
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// compose builds the five parts of one attempt, aiming at targetWords words in total.
func (g *Generator) compose(index int, input schema.ScriptGenerationInput, persona *schema.PersonaProfile, targetWords int) (composed, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	voice := persona.VoiceProfile
	patterns := persona.SpeechPatterns
	topic := strings.TrimSpace(input.Topic)
	energy := patterns.Baseline.TypicalEnergy
	if _, ok := escalationTemplates[energy]; !ok {
		energy = schema.MediumEnergy
	}

	hook, err := g.pickHook(index, input.Style, voice, persona.GenerationParameters)
	if err != nil {
		return composed{}, err
	}
	bridge := topBridge(voice.Bridges)

	c := composed{schema.ScriptStructure{
		Hook:       fmt.Sprintf(g.pick(hookTemplates), capitalize(hook), topic),
		Bridge:     fmt.Sprintf("%s, %s matters more than you think.", capitalize(bridge), topic),
		Escalation: g.escalation(patterns, energy),
		Close:      g.closing(patterns, energy),
	}}
	c.CoreMessage = g.coreMessage(topic, voice, persona.PatternMapping, bridge, targetWords-len(algo.Words(c.Text())))
	return c, nil
}

// pickHook selects a primary hook, preferring hooks that share a word with the style.
func (g *Generator) pickHook(index int, style string, voice schema.VoiceProfile, params schema.GenerationParameters) (string, error) {
	hooks := rules.PrimaryHooks(voice, params)
	if len(hooks) == 0 {
		hooks = voice.Hooks
	}
	if len(hooks) == 0 {
		return "", ErrNoHooks
	}

	if style = strings.TrimSpace(style); style != "" {
		var matching []string
		for _, h := range hooks {
			for _, tok := range algo.Tokenize(style) {
				if len(tok) > 2 && !algo.IsStopword(tok) && algo.ContainsPhrase(h, tok) {
					matching = append(matching, h)
					break
				}
			}
		}
		if len(matching) > 0 {
			return matching[g.rng.IntN(len(matching))], nil
		}
	}

	switch params.PatternRotation {
	case schema.SequentialRotation:
		return hooks[index%len(hooks)], nil
	case schema.WeightedRotation:
		n := len(hooks)
		r := g.rng.IntN(n * (n + 1) / 2)
		for i := range n {
			if r < n-i {
				return hooks[i], nil
			}
			r -= n - i
		}
		return hooks[0], nil
	default:
		return hooks[g.rng.IntN(len(hooks))], nil
	}
}

// topBridge returns the highest weighted bridge phrase, ties broken alphabetically.
func topBridge(bridges map[string]int) string {
	if len(bridges) == 0 {
		return "here's the deal"
	}
	phrases := make([]string, 0, len(bridges))
	for p := range bridges {
		phrases = append(phrases, p)
	}
	slices.SortFunc(phrases, func(a, b string) int {
		if c := cmp.Compare(bridges[b], bridges[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return phrases[0]
}

// coreMessage opens with a personal reference and a signature element, then pads with
// vocabulary sentences until roughly wordBudget words are used.
func (g *Generator) coreMessage(topic string, voice schema.VoiceProfile, matrix schema.PatternMappingMatrix, bridge string, wordBudget int) string {
	personal := "honestly"
	if ex := matrix.PersonalReference.Examples; len(ex) > 0 {
		personal = ex[0]
	}
	vocab := voice.VocabularyFingerprint
	if len(vocab) == 0 {
		vocab = fallbackVocabulary
	}

	var sentences []string
	lead := fmt.Sprintf("%s, %s comes down to %s.", capitalize(personal), topic, vocab[g.rng.IntN(len(vocab))])
	if len(voice.SignatureElements) > 0 {
		sig := voice.SignatureElements[g.rng.IntN(len(voice.SignatureElements))]
		lead = fmt.Sprintf("%s, %s comes down to %s, %s.", capitalize(personal), topic, vocab[g.rng.IntN(len(vocab))], sig)
	}
	sentences = append(sentences, lead)
	used := len(algo.Words(lead))

	seen := map[string]struct{}{algo.Fold(lead): {}}
	offset := g.rng.IntN(len(padTemplates))
	for i := 0; used < wordBudget-4 && i < len(vocab)*len(padTemplates); i++ {
		s := fmt.Sprintf(padTemplates[(i+offset)%len(padTemplates)], vocab[i%len(vocab)], topic)
		if i%3 == 1 {
			s = fmt.Sprintf("%s, %s", capitalize(bridge), lowerFirst(s))
		}
		s = capitalize(s)
		key := algo.Fold(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sentences = append(sentences, s)
		used += len(algo.Words(s))
	}
	return strings.Join(sentences, " ")
}

func (g *Generator) escalation(patterns schema.SpeechPatterns, energy schema.EnergyLevel) string {
	marker := "this is where it gets good"
	if m := patterns.EmotionalStates.Excited.MarkerPhrases; len(m) > 0 {
		marker = m[g.rng.IntN(len(m))]
	}
	return fmt.Sprintf(escalationTemplates[energy], capitalize(marker))
}

func (g *Generator) closing(patterns schema.SpeechPatterns, energy schema.EnergyLevel) string {
	cta := callsToAction[energy]
	closings := patterns.SignatureElements.Catchphrases.Closing
	if len(closings) == 0 {
		return cta
	}
	closing := closings[g.rng.IntN(len(closings))]
	if algo.Fold(strings.TrimRight(cta, ".!")) == algo.Fold(closing) {
		return cta
	}
	return fmt.Sprintf("%s. %s", capitalize(closing), cta)
}

func (g *Generator) pick(items []string) string {
	return items[g.rng.IntN(len(items))]
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || algo.IsCapsWord(strings.Fields(s)[0]) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
