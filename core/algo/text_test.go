package algo

import (
	"testing"

	"github.com/huangsam/voicepersona/schema"
	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "Hello world.", []string{"Hello world"}},
		{"mixed punctuation", "Wait!! Really?! Yes... ok", []string{"Wait", "Really", "Yes", "ok"}},
		{"whitespace only pieces", " . ! ? ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitSentences(tt.text))
		})
	}
}

func TestSentences(t *testing.T) {
	assert.Equal(t, []string{"Wait!!", "Really?!", "Yes...", "ok"}, Sentences("Wait!! Really?! Yes... ok"))
	assert.Nil(t, Sentences(" . ! "))
}

func TestCombineTranscripts(t *testing.T) {
	videos := []schema.VideoAnalysisData{
		{Transcript: "first clip"},
		{Transcript: "   "},
		{Transcript: "Second clip!"},
	}
	assert.Equal(t, "first clip. Second clip!", CombineTranscripts(videos))
	assert.Empty(t, CombineTranscripts(nil))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize(`"Okay," she said -- it's GREAT!`)
	assert.Equal(t, []string{"okay", "she", "said", "it's", "great"}, tokens)
}

func TestIsCapsWord(t *testing.T) {
	assert.True(t, IsCapsWord("WOW"))
	assert.True(t, IsCapsWord("OMG!!"))
	assert.False(t, IsCapsWord("I"))
	assert.False(t, IsCapsWord("Wow"))
	assert.False(t, IsCapsWord("123"))
}

func TestEnergyCounters(t *testing.T) {
	text := "This is INSANE! Like, TOTALLY wild! Right?"
	assert.Equal(t, 2, CountCapsWords(text))
	assert.Equal(t, 2, CountExclamations(text))
	assert.Equal(t, 1, CountQuestions(text))
}

func TestCoefficientOfVariation(t *testing.T) {
	assert.Equal(t, 0.0, CoefficientOfVariation(nil))
	assert.Equal(t, 0.0, CoefficientOfVariation([]float64{0, 0}))
	assert.Equal(t, 0.0, CoefficientOfVariation([]float64{4, 4, 4}))
	assert.InDelta(t, 0.5, CoefficientOfVariation([]float64{1, 3}), 1e-9)
}

func TestAverageSentenceLength(t *testing.T) {
	assert.Equal(t, 0.0, AverageSentenceLength(""))
	assert.InDelta(t, 3.0, AverageSentenceLength("one two. three four five six!"), 1e-9)
}

func TestCountOccurrences(t *testing.T) {
	text := "You know, I mean, you KNOW what I mean? You knowing this is different."
	assert.Equal(t, 2, CountOccurrences(text, "you know"))
	assert.Equal(t, 2, CountOccurrences(text, "I mean"))
	assert.Equal(t, 0, CountOccurrences(text, ""))
	assert.True(t, ContainsPhrase(text, "different"))
	assert.False(t, ContainsPhrase(text, "differ"))
}

func TestFormalWordsOutsideVocabulary(t *testing.T) {
	text := "Furthermore, pursuant to our discussion, moreover we continue."
	assert.Equal(t, []string{"furthermore", "moreover", "pursuant"}, FormalWordsOutsideVocabulary(text, nil))
	assert.Equal(t, []string{"furthermore", "pursuant"}, FormalWordsOutsideVocabulary(text, []string{"Moreover"}))
	assert.Empty(t, FormalWordsOutsideVocabulary("just vibes", nil))
}

func BenchmarkTokenize(b *testing.B) {
	text := "Okay so here's the thing, you know, this is LITERALLY the best thing ever! Honestly."
	for b.Loop() {
		Tokenize(text)
	}
}

func FuzzTokenize(f *testing.F) {
	f.Add("Stop scrolling! You KNOW what I love?")
	f.Add("café crème, s'il vous plaît 🙂")
	f.Add("\xff\xfe don't")
	f.Fuzz(func(t *testing.T, text string) {
		for _, tok := range Tokenize(text) {
			assert.NotEmpty(t, tok)
			assert.NotContains(t, tok, " ")
		}
	})
}

func FuzzCountOccurrences(f *testing.F) {
	f.Add("you know, you know what", "you know")
	f.Add("ééé stop scrolling üüü", "stop scrolling")
	f.Add("abc", "")
	f.Fuzz(func(t *testing.T, text, phrase string) {
		n := CountOccurrences(text, phrase)
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, len(Fold(text)))
		assert.Equal(t, n > 0, ContainsPhrase(text, phrase))
	})
}
