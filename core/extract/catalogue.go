package extract

import (
	"regexp"

	"github.com/huangsam/voicepersona/schema"
)

// group names a family of linguistic markers.
type group string

const (
	hookGroup       group = "hooks"
	bridgeGroup     group = "bridges"
	transitionGroup group = "transitions"
	energyGroup     group = "energy"
	excitedGroup    group = "excited"
	personalGroup   group = "personal"
	audienceGroup   group = "audience"
	fillerGroup     group = "fillers"
	questionGroup   group = "questions"
	sequenceGroup   group = "sequence"
)

// pattern is one compiled marker with the lowest sensitivity that enables it.
type pattern struct {
	re    *regexp.Regexp
	level schema.Sensitivity
}

func p(level schema.Sensitivity, expr string) pattern {
	return pattern{re: regexp.MustCompile(`(?i)` + expr), level: level}
}

const (
	low    = schema.LowSensitivity
	medium = schema.MediumSensitivity
	high   = schema.HighSensitivity
)

// catalogue is the static table of marker families. Low sensitivity only runs
// the strict entries, medium adds the standard entries, high adds loose ones.
var catalogue = map[group][]pattern{
	hookGroup: {
		p(low, `\b(?:stop scrolling|wait for it|you won'?t believe)\b`),
		p(low, `\bhere'?s the (?:thing|deal|secret)\b`),
		p(medium, `\b(?:did you know|let me tell you|okay so|so here'?s|listen up)\b`),
		p(medium, `\bpov\b`),
		p(high, `\b(?:real talk|quick story|storytime)\b`),
	},
	bridgeGroup: {
		p(low, `\b(?:you know|i mean)\b`),
		p(medium, `\b(?:basically|the thing is|here'?s why|and that'?s why)\b`),
		p(medium, `\bbut here'?s the thing\b`),
		p(high, `\b(?:anyway|so yeah|like i said)\b`),
	},
	transitionGroup: {
		p(low, `\b(?:first|second|third|next|finally)\b`),
		p(medium, `\b(?:then|after that|because|which means)\b`),
		p(high, `\b(?:also|plus|so)\b`),
	},
	sequenceGroup: {
		p(low, `\b(?:first|second|third|next|finally|step \w+)\b`),
	},
	energyGroup: {
		p(low, `\b(?:but wait|it gets better|here'?s the crazy part)\b`),
		p(medium, `\b(?:and then|no way|literally|insane|crazy)\b`),
		p(high, `\b(?:huge|massive|wild)\b`),
	},
	excitedGroup: {
		p(low, `\b(?:oh my god|omg|let'?s go|no way)\b`),
		p(medium, `\b(?:so good|amazing|obsessed|incredible)\b`),
		p(high, `\b(?:love|awesome|yes)\b`),
	},
	personalGroup: {
		p(low, `\bi (?:think|feel|believe|remember|used to)\b`),
		p(medium, `\bmy (?:favorite|experience|friend|life|mom|dad)\b`),
		p(medium, `\b(?:personally|honestly)\b`),
		p(high, `\b(?:for me|in my opinion)\b`),
	},
	audienceGroup: {
		p(low, `\b(?:you guys|y'?all|you all)\b`),
		p(medium, `\b(?:everyone|everybody|friends|fam)\b`),
		p(high, `\b(?:chat|besties)\b`),
	},
	fillerGroup: {
		p(low, `\b(?:um+|uh+)\b`),
		p(medium, `\b(?:like|actually|literally)\b`),
		p(medium, `\b(?:kind of|sort of)\b`),
		p(high, `\b(?:right|okay|so yeah)\b`),
	},
	questionGroup: {
		p(low, `\b(?:have you ever|did you)\b[^.!?]*\?`),
		p(medium, `\b(?:what|why|how|who|when|where)\b[^.!?]*\?`),
		p(high, `[^.!?]{3,}\?`),
	},
}

// elementGroups maps each pattern-matrix element onto its marker family.
var elementGroups = map[schema.ElementName]group{
	schema.PrimaryHookElement:       hookGroup,
	schema.BridgePhraseElement:      bridgeGroup,
	schema.EnergyEscalatorElement:   energyGroup,
	schema.PersonalReferenceElement: personalGroup,
	schema.AudienceAddressElement:   audienceGroup,
	schema.QuestionPatternElement:   questionGroup,
}

// elementContexts describes where each element typically shows up.
var elementContexts = map[schema.ElementName]string{
	schema.PrimaryHookElement:       "Opening lines that grab attention",
	schema.BridgePhraseElement:      "Transitions from the hook into the main point",
	schema.EnergyEscalatorElement:   "Build-ups before the payoff",
	schema.PersonalReferenceElement: "Personal anecdotes and opinions",
	schema.AudienceAddressElement:   "Direct address to viewers",
	schema.QuestionPatternElement:   "Questions posed to the audience",
}

// sensitivityRank orders sensitivities from strict to loose.
var sensitivityRank = map[schema.Sensitivity]int{
	low:    0,
	medium: 1,
	high:   2,
}

// patternsFor returns the patterns of a family enabled at the given sensitivity.
func patternsFor(g group, sensitivity schema.Sensitivity) []*regexp.Regexp {
	limit, ok := sensitivityRank[sensitivity]
	if !ok {
		limit = sensitivityRank[medium]
	}
	var res []*regexp.Regexp
	for _, pt := range catalogue[g] {
		if sensitivityRank[pt.level] <= limit {
			res = append(res, pt.re)
		}
	}
	return res
}
