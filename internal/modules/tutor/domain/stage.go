// Package domain decides where a tutoring run stands from its persisted
// fields alone, so a crashed run resumes at the stage it never finished.
package domain

import sessiondomain "robotutor/internal/modules/session/domain"

type Stage string

const (
	StageIntroduce Stage = "introduce"
	StageTeach     Stage = "teach"
	StageQuiz      Stage = "quiz"
	StageSummarize Stage = "summarize"
	StageComplete  Stage = "complete"
)

// StageFor maps a persisted session onto the stage to run next. The quiz
// stage covers grading too: graded-but-unsummarized is the only state the
// row can express between quiz and close, because quiz questions are not
// persisted and must be regenerated on resume.
func StageFor(session sessiondomain.Session, segmentCount int) Stage {
	switch {
	case session.Completed():
		return StageComplete
	case session.Scored():
		return StageSummarize
	case session.SegmentIndex == 0 && len(session.Transcript) == 0:
		return StageIntroduce
	case session.SegmentIndex < segmentCount:
		return StageTeach
	default:
		return StageQuiz
	}
}
