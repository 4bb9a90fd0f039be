package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// Platform represents a short-form video platform.
	Platform string

	// EnergyLevel represents the typical energy of a creator's delivery.
	EnergyLevel string

	// SentenceStructure represents the dominant sentence shape of a creator.
	SentenceStructure string

	// ExplainingStructure represents how a creator walks through an explanation.
	ExplainingStructure string

	// PatternRotation represents how hooks are rotated across generated scripts.
	PatternRotation string

	// Sensitivity represents how strict pattern matching is.
	Sensitivity string

	// FeedStatus represents the outcome of a feed analysis.
	FeedStatus string

	// ErrorCode represents a classified persona analysis or generation failure.
	ErrorCode string

	// MetricKey represents one of the authenticity sub-metrics.
	MetricKey string

	// ElementName represents one of the named pattern-matrix elements.
	ElementName string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All platforms known to the analyzer. Only TikTok feeds are implemented.
const (
	TikTokPlatform    Platform = "tiktok" // default
	InstagramPlatform Platform = "instagram"
)

// Energy levels.
const (
	LowEnergy    EnergyLevel = "low"
	MediumEnergy EnergyLevel = "medium"
	HighEnergy   EnergyLevel = "high"
)

// Sentence structures.
const (
	ShortStructure   SentenceStructure = "short"
	VariedStructure  SentenceStructure = "varied"
	ComplexStructure SentenceStructure = "complex"
)

// Explaining structures.
const (
	StepByStepStructure ExplainingStructure = "step-by-step"
	CircularStructure   ExplainingStructure = "circular"
)

// Pattern rotation strategies.
const (
	WeightedRotation   PatternRotation = "weighted"
	SequentialRotation PatternRotation = "sequential"
	RandomRotation     PatternRotation = "random"
)

// Pattern matching sensitivity levels.
const (
	LowSensitivity    Sensitivity = "low"
	MediumSensitivity Sensitivity = "medium" // default
	HighSensitivity   Sensitivity = "high"
)

// Feed analysis and analysis run statuses.
const (
	RunningStatus   FeedStatus = "running" // analysis runs only
	CompletedStatus FeedStatus = "completed"
	FailedStatus    FeedStatus = "failed"
)

// Error codes surfaced by the orchestrators and the generator.
const (
	UserNotFound        ErrorCode = "USER_NOT_FOUND"
	InsufficientContent ErrorCode = "INSUFFICIENT_CONTENT"
	TranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	RateLimitExceeded   ErrorCode = "RATE_LIMIT_EXCEEDED"
	InvalidPlatform     ErrorCode = "INVALID_PLATFORM"
	AnalysisTimeout     ErrorCode = "ANALYSIS_TIMEOUT"
	GenerationFailed    ErrorCode = "GENERATION_FAILED"
)

// Authenticity sub-metric keys.
const (
	HookAccuracyKey      MetricKey = "hookAccuracy"
	BridgeFrequencyKey   MetricKey = "bridgeFrequency"
	SentencePatternsKey  MetricKey = "sentencePatterns"
	VocabularyMatchKey   MetricKey = "vocabularyMatch"
	RhythmReplicationKey MetricKey = "rhythmReplication"
)

// Pattern-matrix element names.
const (
	PrimaryHookElement       ElementName = "primaryHook"
	BridgePhraseElement      ElementName = "bridgePhrase"
	EnergyEscalatorElement   ElementName = "energyEscalator"
	PersonalReferenceElement ElementName = "personalReference"
	AudienceAddressElement   ElementName = "audienceAddress"
	QuestionPatternElement   ElementName = "questionPattern"
)

// AnalysisVersion is stamped onto every persona produced by this build.
const AnalysisVersion = "2.1.0"

// AllMetricKeys lists the authenticity sub-metrics in report order.
var AllMetricKeys = []MetricKey{
	HookAccuracyKey,
	BridgeFrequencyKey,
	SentencePatternsKey,
	VocabularyMatchKey,
	RhythmReplicationKey,
}

// AllElementNames lists the pattern-matrix elements in report order.
var AllElementNames = []ElementName{
	PrimaryHookElement,
	BridgePhraseElement,
	EnergyEscalatorElement,
	PersonalReferenceElement,
	AudienceAddressElement,
	QuestionPatternElement,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidPlatforms lists all platforms accepted as input.
var ValidPlatforms = map[Platform]struct{}{
	TikTokPlatform:    {},
	InstagramPlatform: {},
}

// ValidSensitivities lists all valid sensitivity levels.
var ValidSensitivities = map[Sensitivity]struct{}{
	LowSensitivity:    {},
	MediumSensitivity: {},
	HighSensitivity:   {},
}

// DefaultMetricWeights returns the fixed weight of each authenticity sub-metric.
// The weights always sum to 100.
func DefaultMetricWeights() map[MetricKey]int {
	return map[MetricKey]int{
		HookAccuracyKey:      20,
		BridgeFrequencyKey:   20,
		SentencePatternsKey:  20,
		VocabularyMatchKey:   20,
		RhythmReplicationKey: 20,
	}
}
