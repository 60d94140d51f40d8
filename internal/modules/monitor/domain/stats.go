package domain

import (
	"math"

	sessiondomain "robotutor/internal/modules/session/domain"
)

type DashboardStats struct {
	Lessons         int     `json:"lessons"`
	Sessions        int     `json:"sessions"`
	Students        int     `json:"students"`
	Completed       int     `json:"completed"`
	AverageScorePct float64 `json:"average_score_pct"`
}

// Aggregate computes dashboard stats over every session. The average covers
// scored sessions only and is 0 when none are scored.
func Aggregate(lessonCount int, sessions []sessiondomain.Session) DashboardStats {
	stats := DashboardStats{Lessons: lessonCount, Sessions: len(sessions)}
	students := map[string]struct{}{}
	scored := 0
	total := 0.0
	for _, session := range sessions {
		students[session.StudentID] = struct{}{}
		if session.Completed() {
			stats.Completed++
		}
		if session.Scored() && *session.ScoreMax > 0 {
			scored++
			total += 100 * float64(*session.Score) / float64(*session.ScoreMax)
		}
	}
	stats.Students = len(students)
	if scored > 0 {
		stats.AverageScorePct = math.Round(total/float64(scored)*10) / 10
	}
	return stats
}

func (s DashboardStats) Equal(other DashboardStats) bool {
	return s == other
}
