// Package sentiment scores English text for polarity and subjectivity with a
// small word lexicon and turns the scores into a 1 to 5 bias rating.
package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// Result is the sentiment of a text.
type Result struct {
	// Polarity ranges from -1 (negative) to 1 (positive).
	Polarity float64
	// Subjectivity ranges from 0 (objective) to 1 (subjective).
	Subjectivity float64
}

// Analyze scores text. Each lexicon word contributes its score, modified by a
// directly preceding intensifier and inverted by a negation within the two
// words before it. The result is the mean over all scored words; text without
// any lexicon word scores zero on both axes.
func Analyze(text string) Result {
	tokens := Tokenize(text)

	var polSum, subjSum float64
	var n int
	for i, tok := range tokens {
		s, ok := lexicon[tok]
		if !ok {
			continue
		}
		pol, subj := s.polarity, s.subjectivity

		if i > 0 {
			if m, ok := intensifiers[tokens[i-1]]; ok {
				pol *= m
				subj *= m
			}
		}
		for j := max(0, i-2); j < i; j++ {
			if negations[tokens[j]] {
				pol *= negationFactor
				break
			}
		}

		polSum += clamp(pol, -1, 1)
		subjSum += clamp(subj, 0, 1)
		n++
	}
	if n == 0 {
		return Result{}
	}
	return Result{
		Polarity:     round(polSum / float64(n)),
		Subjectivity: round(subjSum / float64(n)),
	}
}

// WordPolarity returns the lexicon polarity of a single word, ignoring case.
func WordPolarity(word string) float64 {
	return lexicon[strings.ToLower(word)].polarity
}

// Tokenize splits text into lower-cased words. Apostrophes stay inside words
// so that contractions such as "isn't" survive.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
