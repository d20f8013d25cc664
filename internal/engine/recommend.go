package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/models"
)

// Priority classifies a recommendation by its composite score.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is one ranked entry of the study suggestion list.
type Recommendation struct {
	CourseID         string   `json:"course_id"`
	CourseName       string   `json:"course_name"`
	CourseIcon       string   `json:"course_icon,omitempty"`
	Score            int      `json:"score"`
	Priority         Priority `json:"priority"`
	Reason           string   `json:"reason"`
	SuggestedMinutes int      `json:"suggested_minutes"`
}

// defaultSessionMinutes is assumed for courses that have no sessions yet.
const defaultSessionMinutes = 30

// maxRecommendations caps the ranked list.
const maxRecommendations = 3

// courseStats holds the per-course quantities the score and reason rules
// are computed from.
type courseStats struct {
	completionPct int
	lastStudy     *time.Time // nil = never studied
	daysSince     int        // valid only when lastStudy != nil
	weeklyMinutes int
	avgMinutes    int
}

// Recommend ranks the eligible courses by composite urgency and returns the
// top three, each with a priority tier, a reason, and a suggested session
// length. It is a total function: courses with no sessions, unknown session
// course ids, or inconsistent lesson counters all resolve to defined values.
func Recommend(sessions []models.Session, courses []models.Course, now time.Time) []Recommendation {
	recs := make([]Recommendation, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		if c.TotalLessons <= 0 {
			continue
		}

		stats := statsFor(c, sessions, now)
		score := compositeScore(stats)
		prio := classify(score)

		recs = append(recs, Recommendation{
			CourseID:         c.ID,
			CourseName:       c.Name,
			CourseIcon:       c.Icon,
			Score:            score,
			Priority:         prio,
			Reason:           reasonFor(stats),
			SuggestedMinutes: suggestedMinutes(prio, stats.avgMinutes),
		})
	}

	// score descending; SliceStable keeps course traversal order on ties
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// statsFor derives a course's scoring inputs from the full session history.
// Sessions referencing other (or unknown) course ids are ignored here.
func statsFor(c *models.Course, sessions []models.Session, now time.Time) courseStats {
	stats := courseStats{
		completionPct: completionPercent(c.CompletedLessons, c.TotalLessons),
		avgMinutes:    defaultSessionMinutes,
	}

	count := 0
	totalMinutes := 0
	for i := range sessions {
		s := &sessions[i]
		if s.CourseID != c.ID {
			continue
		}

		count++
		totalMinutes += s.Duration

		if stats.lastStudy == nil || s.Date.After(*stats.lastStudy) {
			d := s.Date
			stats.lastStudy = &d
		}
		if inWeek(s.Date, now) {
			stats.weeklyMinutes += s.Duration
		}
	}

	if count > 0 {
		stats.avgMinutes = int(math.Round(float64(totalMinutes) / float64(count)))
	}
	if stats.lastStudy != nil {
		stats.daysSince = DaysBetween(*stats.lastStudy, now)
		if stats.daysSince < 0 {
			stats.daysSince = 0
		}
	}
	return stats
}

// compositeScore sums the four weighted factors and clamps to [0, 100].
// Each factor is already bounded, so the clamp only guards arithmetic drift.
func compositeScore(s courseStats) int {
	score := completionGapFactor(s) + stalenessFactor(s) + weeklyFactor(s) + nearCompletionFactor(s)

	final := int(math.Round(score))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	return final
}

// completionGapFactor: up to 40 points for unfinished lessons.
func completionGapFactor(s courseStats) float64 {
	return float64(100-s.completionPct) * 0.4
}

// stalenessFactor: 5 points per day since the last session, saturating at 30.
// A course never studied is maximally stale.
func stalenessFactor(s courseStats) float64 {
	if s.lastStudy == nil {
		return 30
	}
	return math.Min(float64(s.daysSince)*5, 30)
}

// weeklyFactor: 20 points under half an hour this week, 10 under an hour.
func weeklyFactor(s courseStats) float64 {
	switch {
	case s.weeklyMinutes < 30:
		return 20
	case s.weeklyMinutes < 60:
		return 10
	default:
		return 0
	}
}

// nearCompletionFactor: 10 bonus points in the 80-99% home stretch.
// A finished course gets nothing.
func nearCompletionFactor(s courseStats) float64 {
	if s.completionPct >= 80 && s.completionPct < 100 {
		return 10
	}
	return 0
}

func classify(score int) Priority {
	switch {
	case score >= 70:
		return PriorityHigh
	case score >= 40:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// reasonRules are evaluated top-down; the first match wins. The order is
// fixed and user-visible, so changing it changes the texts users see.
var reasonRules = []struct {
	match func(s courseStats) bool
	text  func(s courseStats) string
}{
	{
		match: func(s courseStats) bool { return s.completionPct < 30 },
		text: func(s courseStats) string {
			return fmt.Sprintf("Only %d%% complete. Focus needed to catch up.", s.completionPct)
		},
	},
	{
		match: func(s courseStats) bool { return s.lastStudy == nil || s.daysSince > 7 },
		text: func(s courseStats) string {
			if s.lastStudy == nil {
				return "Haven't studied yet. Time to start!"
			}
			return fmt.Sprintf("Haven't studied in %d days. Time to review!", s.daysSince)
		},
	},
	{
		match: func(s courseStats) bool { return s.weeklyMinutes < 30 },
		text: func(s courseStats) string {
			return fmt.Sprintf("Only %d minutes this week. Increase study time.", s.weeklyMinutes)
		},
	},
	{
		match: func(s courseStats) bool { return s.completionPct >= 80 && s.completionPct < 100 },
		text: func(s courseStats) string {
			return fmt.Sprintf("%d%% complete. Almost there! Finish strong.", s.completionPct)
		},
	},
}

func reasonFor(s courseStats) string {
	for _, rule := range reasonRules {
		if rule.match(s) {
			return rule.text(s)
		}
	}
	return fmt.Sprintf("Maintain steady progress. %d%% complete.", s.completionPct)
}

// suggestedMinutes proposes a session length: urgent courses get at least a
// solid block, low-priority ones keep their historical average.
func suggestedMinutes(p Priority, avg int) int {
	switch p {
	case PriorityHigh:
		if avg < 45 {
			return 45
		}
	case PriorityMedium:
		if avg < 30 {
			return 30
		}
	}
	return avg
}
