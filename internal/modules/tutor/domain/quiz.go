package domain

// DefaultQuizCount matches the fixed-length quiz mode of the collaborators.
const DefaultQuizCount = 5

// QuizQuestion lives only in memory for the duration of one run; the
// transcript records the spoken question and answer, not the ideal answer.
type QuizQuestion struct {
	Question     string
	IdealAnswer  string
	RubricPoints []string
}
