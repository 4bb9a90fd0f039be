package schema

import "time"

// UserIdentifier names a creator on a platform.
type UserIdentifier struct {
	Handle   string   `json:"handle"`
	Platform Platform `json:"platform"`
}

// String renders the identifier as platform/@handle.
func (u UserIdentifier) String() string {
	return string(u.Platform) + "/@" + u.Handle
}

// Engagement holds the public counters of a video.
type Engagement struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// VideoMetadata holds capture details of a video.
type VideoMetadata struct {
	CapturedAt time.Time `json:"capturedAt"`
	Platform   Platform  `json:"platform"`
}

// VideoAnalysisData is one processed video. It is immutable once created.
type VideoAnalysisData struct {
	VideoID    string        `json:"videoId"`
	URL        string        `json:"url"`
	Transcript string        `json:"transcript"`
	Duration   float64       `json:"duration"` // seconds
	Engagement Engagement    `json:"engagement"`
	Metadata   VideoMetadata `json:"metadata"`
}

// Baseline summarizes the default delivery of a creator.
type Baseline struct {
	DefaultRhythm     string            `json:"defaultRhythm"`
	TypicalEnergy     EnergyLevel       `json:"typicalEnergy"`
	EnergyDescription string            `json:"energyDescription"`
	SentenceStructure SentenceStructure `json:"sentenceStructure"`
}

// ExcitedState describes how a creator sounds when excited.
type ExcitedState struct {
	PatternChanges string   `json:"patternChanges"`
	MarkerPhrases  []string `json:"markerPhrases"`
	EnergySpike    string   `json:"energySpike"`
}

// ExplainingState describes how a creator walks through an explanation.
type ExplainingState struct {
	Structure            ExplainingStructure `json:"structure"`
	TransitionWords      []string            `json:"transitionWords"`
	ComplexityManagement string              `json:"complexityManagement"`
}

// EmotionalStates groups the per-state observations.
type EmotionalStates struct {
	Excited    ExcitedState    `json:"excited"`
	Explaining ExplainingState `json:"explaining"`
}

// Catchphrases holds opening and closing candidates.
type Catchphrases struct {
	Opening []string `json:"opening"`
	Closing []string `json:"closing"`
}

// SignatureElements holds the verbal tics of a creator.
type SignatureElements struct {
	RandomInsertions []string     `json:"randomInsertions"`
	FillerPatterns   []string     `json:"fillerPatterns"`
	Catchphrases     Catchphrases `json:"catchphrases"`
}

// SpeechPatterns is a per-creator linguistic summary derived purely from transcript text.
// All list fields are deduplicated.
type SpeechPatterns struct {
	Baseline          Baseline          `json:"baseline"`
	EmotionalStates   EmotionalStates   `json:"emotionalStates"`
	SignatureElements SignatureElements `json:"signatureElements"`
}

// PatternElement is one row of the pattern-mapping matrix.
type PatternElement struct {
	Element   ElementName `json:"element"`
	Frequency string      `json:"frequency"` // "Every N words" or "Rarely used"
	Examples  []string    `json:"examples"`  // at most 5
	Context   string      `json:"context"`
}

// PatternMappingMatrix is the frequency table of the six named pattern elements.
type PatternMappingMatrix struct {
	PrimaryHook       PatternElement `json:"primaryHook"`
	BridgePhrase      PatternElement `json:"bridgePhrase"`
	EnergyEscalator   PatternElement `json:"energyEscalator"`
	PersonalReference PatternElement `json:"personalReference"`
	AudienceAddress   PatternElement `json:"audienceAddress"`
	QuestionPattern   PatternElement `json:"questionPattern"`
}

// Elements returns the matrix rows in report order.
func (m PatternMappingMatrix) Elements() []PatternElement {
	return []PatternElement{
		m.PrimaryHook,
		m.BridgePhrase,
		m.EnergyEscalator,
		m.PersonalReference,
		m.AudienceAddress,
		m.QuestionPattern,
	}
}

// VoiceProfile is the synthesized voice of a persona.
type VoiceProfile struct {
	Hooks                 []string       `json:"hooks"`
	Bridges               map[string]int `json:"bridges"`
	EnergyWave            string         `json:"energyWave"`
	SentencePatterns      []string       `json:"sentencePatterns"`
	SignatureElements     []string       `json:"signatureElements"`
	VocabularyFingerprint []string       `json:"vocabularyFingerprint"`
	RhythmPattern         string         `json:"rhythmPattern"`
}

// HookRatio splits hooks into primary and secondary counts.
type HookRatio struct {
	Primary   int `json:"primary"`
	Secondary int `json:"secondary"`
}

// SentenceDistribution holds short/medium/long percentages summing to about 100.
type SentenceDistribution struct {
	Short  int `json:"short"`
	Medium int `json:"medium"`
	Long   int `json:"long"`
}

// Sum returns the total of the three percentages.
func (d SentenceDistribution) Sum() int {
	return d.Short + d.Medium + d.Long
}

// GenerationParameters holds tunables derived from a voice profile.
type GenerationParameters struct {
	OptimalLength         int                  `json:"optimalLength"`         // seconds, [15,60]
	AuthenticityThreshold int                  `json:"authenticityThreshold"` // percent, [75,95]
	PatternRotation       PatternRotation      `json:"patternRotation"`
	HookRatio             HookRatio            `json:"hookRatio"`
	SentenceDistribution  SentenceDistribution `json:"sentenceDistribution"`
}

// PersonaMetadata records provenance of a persona.
type PersonaMetadata struct {
	VideosAnalyzed        int       `json:"videosAnalyzed"`
	TotalTranscriptLength int       `json:"totalTranscriptLength"`
	AnalysisVersion       string    `json:"analysisVersion"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

// PersonaProfile is the complete snapshot of an analyzed creator voice.
// Re-analysis produces a new PersonaProfile rather than mutating one.
type PersonaProfile struct {
	PersonaID            string               `json:"personaId"`
	UserIdentifier       UserIdentifier       `json:"userIdentifier"`
	AnalysisDate         time.Time            `json:"analysisDate"`
	VoiceProfile         VoiceProfile         `json:"voiceProfile"`
	SpeechPatterns       SpeechPatterns       `json:"speechPatterns"`
	PatternMapping       PatternMappingMatrix `json:"patternMapping"`
	GenerationParameters GenerationParameters `json:"generationParameters"`
	Metadata             PersonaMetadata      `json:"metadata"`
}

// PersonaSummary is a compact listing entry for stored personas.
type PersonaSummary struct {
	PersonaID      string         `json:"personaId"`
	UserIdentifier UserIdentifier `json:"userIdentifier"`
	AnalysisDate   time.Time      `json:"analysisDate"`
	VideosAnalyzed int            `json:"videosAnalyzed"`
	HookCount      int            `json:"hookCount"`
	Threshold      int            `json:"authenticityThreshold"`
}

// Summarize builds the listing entry for a persona.
func (p *PersonaProfile) Summarize() PersonaSummary {
	return PersonaSummary{
		PersonaID:      p.PersonaID,
		UserIdentifier: p.UserIdentifier,
		AnalysisDate:   p.AnalysisDate,
		VideosAnalyzed: p.Metadata.VideosAnalyzed,
		HookCount:      len(p.VoiceProfile.Hooks),
		Threshold:      p.GenerationParameters.AuthenticityThreshold,
	}
}
