package sentiment

import "math"

// BiasWordThreshold is the absolute word polarity above which a word counts
// as a driver of bias.
const BiasWordThreshold = 0.5

var explanations = [...]string{
	1: "The article appears to be neutral and objective, with minimal bias.",
	2: "The article is mostly balanced but shows slight leanings in sentiment or subjectivity.",
	3: "The article exhibits a moderate bias, showing noticeable sentiment or subjective opinions.",
	4: "The article is strongly biased, with clear sentiment or subjective opinions dominating the content.",
	5: "The article is highly biased, with extreme sentiment or heavily subjective content.",
}

// Rating maps polarity and subjectivity to a bias rating between 1 (neutral)
// and 5 (highly biased).
func Rating(polarity, subjectivity float64) int {
	p := math.Abs(polarity)
	switch {
	case p < 0.1 && subjectivity < 0.3:
		return 1
	case p < 0.3 && subjectivity < 0.5:
		return 2
	case p < 0.5:
		return 3
	case p < 0.7:
		return 4
	default:
		return 5
	}
}

// Explanation returns the human-readable reason for a bias rating, or "" when
// the rating is out of range.
func Explanation(rating int) string {
	if rating < 1 || rating >= len(explanations) {
		return ""
	}
	return explanations[rating]
}

// BiasWords returns the distinct words of text whose lexicon polarity exceeds
// BiasWordThreshold in absolute value, in order of first appearance.
func BiasWords(text string) []string {
	seen := make(map[string]bool)
	words := []string{}
	for _, tok := range Tokenize(text) {
		if seen[tok] || math.Abs(lexicon[tok].polarity) <= BiasWordThreshold {
			continue
		}
		seen[tok] = true
		words = append(words, tok)
	}
	return words
}

// Assessment is the full bias assessment of a text.
type Assessment struct {
	Result
	Rating      int
	Explanation string
	Words       []string
}

// Assess scores text and rates its bias.
func Assess(text string) Assessment {
	r := Analyze(text)
	rating := Rating(r.Polarity, r.Subjectivity)
	return Assessment{
		Result:      r,
		Rating:      rating,
		Explanation: Explanation(rating),
		Words:       BiasWords(text),
	}
}
