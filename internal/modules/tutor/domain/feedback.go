package domain

import "strings"

// Rating is the immediate in-segment judgement of a check-question answer.
// It drives the spoken encouragement only; real grading happens after the
// quiz through the grader collaborator.
type Rating string

const (
	RatingCorrect Rating = "correct"
	RatingClose   Rating = "close"
	RatingMiss    Rating = "miss"
)

// RateAnswer compares the student's answer against the ideal one by keyword
// overlap. An answer covering at least half of the ideal keywords counts as
// correct, a single shared keyword as close.
func RateAnswer(ideal, given string) Rating {
	idealWords := keywords(ideal)
	if len(idealWords) == 0 {
		return RatingCorrect
	}
	givenWords := keywords(given)
	overlap := 0
	for word := range idealWords {
		if _, ok := givenWords[word]; ok {
			overlap++
		}
	}
	threshold := len(idealWords) / 2
	if threshold < 1 {
		threshold = 1
	}
	switch {
	case overlap >= threshold:
		return RatingCorrect
	case overlap >= 1:
		return RatingClose
	default:
		return RatingMiss
	}
}

// Encouragement returns the spoken reaction for a rating.
func Encouragement(rating Rating) string {
	switch rating {
	case RatingCorrect:
		return "Exactly right, well done!"
	case RatingClose:
		return "You're close! Let's look at that once more."
	default:
		return "Good try! Here's a hint to think about."
	}
}

func keywords(text string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
		})
		if len(word) >= 3 {
			words[word] = struct{}{}
		}
	}
	return words
}
