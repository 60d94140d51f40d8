package domain_test

import (
	"testing"
	"time"

	sessiondomain "robotutor/internal/modules/session/domain"
	"robotutor/internal/modules/tutor/domain"
)

func TestStageFor(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	ended := started.Add(25 * time.Minute)
	score, scoreMax := 4, 5

	cases := []struct {
		name    string
		session sessiondomain.Session
		count   int
		want    domain.Stage
	}{
		{
			name:    "fresh session introduces",
			session: sessiondomain.Session{SegmentIndex: 0, StartedAt: started},
			count:   3,
			want:    domain.StageIntroduce,
		},
		{
			name: "introduced session teaches segment zero",
			session: sessiondomain.Session{
				SegmentIndex: 0,
				Transcript:   []sessiondomain.TranscriptEntry{{Role: sessiondomain.RoleTeacher, Text: "hello"}},
				StartedAt:    started,
			},
			count: 3,
			want:  domain.StageTeach,
		},
		{
			name:    "mid lesson teaches current segment",
			session: sessiondomain.Session{SegmentIndex: 2, StartedAt: started},
			count:   3,
			want:    domain.StageTeach,
		},
		{
			name:    "all segments done enters quiz",
			session: sessiondomain.Session{SegmentIndex: 3, StartedAt: started},
			count:   3,
			want:    domain.StageQuiz,
		},
		{
			name:    "index past count without score is still quiz",
			session: sessiondomain.Session{SegmentIndex: 7, StartedAt: started},
			count:   3,
			want:    domain.StageQuiz,
		},
		{
			name: "scored but not ended summarizes",
			session: sessiondomain.Session{
				SegmentIndex: 3, Score: &score, ScoreMax: &scoreMax, StartedAt: started,
			},
			count: 3,
			want:  domain.StageSummarize,
		},
		{
			name: "ended session is complete",
			session: sessiondomain.Session{
				SegmentIndex: 3, Score: &score, ScoreMax: &scoreMax,
				StartedAt: started, EndedAt: &ended,
			},
			count: 3,
			want:  domain.StageComplete,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := domain.StageFor(tc.session, tc.count); got != tc.want {
				t.Fatalf("StageFor = %s, want %s", got, tc.want)
			}
		})
	}
}
