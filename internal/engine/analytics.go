package engine

import (
	"math"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/models"
)

// DailyMinutes is one calendar-day bucket of the weekly study chart.
type DailyMinutes struct {
	DayLabel string `json:"day_label"` // short weekday name, e.g. "Mon"
	Date     string `json:"date"`      // "2006-01-02"
	Minutes  int    `json:"minutes"`
}

// CourseCompletion is one course's lesson progress for the completion chart.
type CourseCompletion struct {
	CourseID             string `json:"course_id"`
	CourseName           string `json:"course_name"`
	CompletedLessons     int    `json:"completed_lessons"`
	TotalLessons         int    `json:"total_lessons"`
	CompletionPercentage int    `json:"completion_percentage"`
}

// DailySeries buckets session minutes into the last seven calendar days,
// oldest first, ending with today. Sessions match a bucket by calendar-date
// equality, not by instant-range membership, so a session logged at any time
// of day counts toward that day. The series always has exactly seven entries.
func DailySeries(sessions []models.Session, now time.Time) []DailyMinutes {
	series := make([]DailyMinutes, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := DayStart(now.AddDate(0, 0, -offset))

		minutes := 0
		for i := range sessions {
			if sameDay(sessions[i].Date, day) {
				minutes += sessions[i].Duration
			}
		}

		series = append(series, DailyMinutes{
			DayLabel: day.Weekday().String()[:3],
			Date:     day.Format("2006-01-02"),
			Minutes:  minutes,
		})
	}
	return series
}

// CompletionSeries reports lesson progress per course, in the order the
// courses are given. Courses with no lessons have no meaningful ratio and are
// omitted entirely rather than reported as zero.
func CompletionSeries(courses []models.Course) []CourseCompletion {
	out := make([]CourseCompletion, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		if c.TotalLessons <= 0 {
			continue
		}
		out = append(out, CourseCompletion{
			CourseID:             c.ID,
			CourseName:           c.Name,
			CompletedLessons:     c.CompletedLessons,
			TotalLessons:         c.TotalLessons,
			CompletionPercentage: completionPercent(c.CompletedLessons, c.TotalLessons),
		})
	}
	return out
}

// WeekTotal sums session minutes inside the trailing 7-day instant window.
func WeekTotal(sessions []models.Session, now time.Time) int {
	total := 0
	for i := range sessions {
		if inWeek(sessions[i].Date, now) {
			total += sessions[i].Duration
		}
	}
	return total
}

// completionPercent rounds half-up to the nearest integer percentage.
// Completed counts above total (bad upstream data) clamp to 100, negative
// counts clamp to 0; a non-positive total yields 0.
func completionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
