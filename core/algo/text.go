// Package algo has the text statistics shared by the analyzers.
package algo

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/huangsam/voicepersona/schema"
	"golang.org/x/text/cases"
)

// sentenceBoundary splits text into sentences.
var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// FormalConnectives are connectives that rarely appear in short-form speech.
var FormalConnectives = []string{
	"furthermore",
	"moreover",
	"consequently",
	"nevertheless",
	"pursuant",
	"notwithstanding",
}

// stopwords are ignored when mining n-grams and catchphrases.
var stopwords = map[string]struct{}{}

func init() {
	for w := range strings.FieldsSeq(`a about after all also am an and any are as at be because been but by can could
		did do does for from had has have he her him his how i i'm if in into is it it's its just me more most my no not
		of on one or our out over she so some than that that's the their them then there they this to too up us very was
		we were what when which who will with would you you're your`) {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether a folded token is a stopword.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Fold returns the Unicode case-folded form of s for case-insensitive comparison.
// A new caser is used per call since casers keep state.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// SplitSentences splits text on runs of sentence punctuation and drops empty pieces.
func SplitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// Tokenize folds text and strips punctuation from each word, keeping inner apostrophes.
func Tokenize(text string) []string {
	var tokens []string
	for _, w := range strings.Fields(Fold(text)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		w = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' {
				return r
			}
			return -1
		}, w)
		if w != "" {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// IsCapsWord reports whether w has at least two letters and all of them are upper case.
func IsCapsWord(w string) bool {
	letters := 0
	for _, r := range w {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}

// CountCapsWords counts the ALL-CAPS words of text.
func CountCapsWords(text string) int {
	n := 0
	for _, w := range strings.Fields(text) {
		if IsCapsWord(w) {
			n++
		}
	}
	return n
}

// CountExclamations counts exclamation marks.
func CountExclamations(text string) int {
	return strings.Count(text, "!")
}

// CountQuestions counts question marks.
func CountQuestions(text string) int {
	return strings.Count(text, "?")
}

// SentenceLengths returns the word count of each sentence.
func SentenceLengths(text string) []float64 {
	sentences := SplitSentences(text)
	lengths := make([]float64, len(sentences))
	for i, s := range sentences {
		lengths[i] = float64(len(strings.Fields(s)))
	}
	return lengths
}

// AverageSentenceLength returns the mean words per sentence, or 0 for no sentences.
func AverageSentenceLength(text string) float64 {
	return Mean(SentenceLengths(text))
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// CoefficientOfVariation returns the population standard deviation divided by the mean.
// It returns 0 when there are no values or the mean is zero.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / mean
}

// CountOccurrences counts case-insensitive occurrences of phrase in text that
// start and end on word boundaries.
func CountOccurrences(text, phrase string) int {
	haystack := Fold(text)
	needle := strings.TrimSpace(Fold(phrase))
	if needle == "" {
		return 0
	}
	n := 0
	for start := 0; start < len(haystack); {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			break
		}
		begin := start + idx
		end := begin + len(needle)
		if isBoundary(haystack, begin-1) && isBoundary(haystack, end) {
			n++
		}
		start = begin + 1
	}
	return n
}

// ContainsPhrase reports whether phrase occurs in text on word boundaries.
func ContainsPhrase(text, phrase string) bool {
	return CountOccurrences(text, phrase) > 0
}

// isBoundary reports whether the byte at i is outside s or not part of a word.
func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r := rune(s[i])
	return r < 0x80 && !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
}

// FormalWordsOutsideVocabulary returns the formal connectives present in text
// that are not part of the given vocabulary.
func FormalWordsOutsideVocabulary(text string, vocabulary []string) []string {
	known := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		known[Fold(v)] = struct{}{}
	}
	var found []string
	for _, w := range FormalConnectives {
		if _, ok := known[w]; ok {
			continue
		}
		if ContainsPhrase(text, w) {
			found = append(found, w)
		}
	}
	return found
}

// sentencePiece matches a sentence together with its closing punctuation.
var sentencePiece = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Sentences is like SplitSentences but keeps the closing punctuation of each sentence.
func Sentences(text string) []string {
	var sentences []string
	for _, s := range sentencePiece.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); strings.TrimRight(s, ".!?") != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// CombineTranscripts joins the transcripts of all videos, closing each with a
// sentence terminator so that sentences never run across videos.
func CombineTranscripts(videos []schema.VideoAnalysisData) string {
	parts := make([]string, 0, len(videos))
	for _, v := range videos {
		t := strings.TrimSpace(v.Transcript)
		if t == "" {
			continue
		}
		if !strings.ContainsAny(t[len(t)-1:], ".!?") {
			t += "."
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}
