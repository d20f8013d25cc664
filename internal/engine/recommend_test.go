package engine

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/models"
)

func eligibleCourse(id string, completed, total int) models.Course {
	return models.Course{ID: id, Name: strings.ToUpper(id), TotalLessons: total, CompletedLessons: completed}
}

func TestRecommend_TopThreeCap(t *testing.T) {
	courses := []models.Course{
		eligibleCourse("a", 0, 10),
		eligibleCourse("b", 1, 10),
		eligibleCourse("c", 2, 10),
		eligibleCourse("d", 3, 10),
		eligibleCourse("e", 4, 10),
	}

	recs := Recommend(nil, courses, testNow)
	if len(recs) != 3 {
		t.Errorf("len = %d, want 3", len(recs))
	}

	recs = Recommend(nil, courses[:2], testNow)
	if len(recs) != 2 {
		t.Errorf("two eligible courses: len = %d, want 2", len(recs))
	}

	if recs := Recommend(nil, nil, testNow); len(recs) != 0 {
		t.Errorf("no courses: len = %d, want 0", len(recs))
	}
}

func TestRecommend_ExcludesZeroLessonCourses(t *testing.T) {
	courses := []models.Course{
		{ID: "empty", Name: "Empty", TotalLessons: 0},
		eligibleCourse("real", 0, 10),
	}

	recs := Recommend(nil, courses, testNow)

	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	if recs[0].CourseID != "real" {
		t.Errorf("got %s, want real", recs[0].CourseID)
	}
}

func TestRecommend_ScoreBounds(t *testing.T) {
	courses := []models.Course{
		eligibleCourse("untouched", 0, 20),
		eligibleCourse("done", 10, 10),
		eligibleCourse("mid", 5, 10),
	}
	sessions := []models.Session{
		sessionOn("done", 0, 60),
		sessionOn("mid", 2, 45),
	}

	for _, r := range Recommend(sessions, courses, testNow) {
		if r.Score < 0 || r.Score > 100 {
			t.Errorf("course %s: score %d out of [0,100]", r.CourseID, r.Score)
		}
	}
}

// A course never touched at all: completion gap 40 + staleness 30 +
// weekly under-study 20 = 90, high priority.
func TestRecommend_NeverStudiedScoresNearMax(t *testing.T) {
	courses := []models.Course{eligibleCourse("new", 0, 12)}

	recs := Recommend(nil, courses, testNow)

	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Score != 90 {
		t.Errorf("score = %d, want 90", r.Score)
	}
	if r.Priority != PriorityHigh {
		t.Errorf("priority = %s, want high", r.Priority)
	}
}

func TestRecommend_NearCompletionBonus(t *testing.T) {
	// both studied today with a long weekly total, so only the completion
	// gap and the near-completion bonus differ
	courses := []models.Course{
		eligibleCourse("almost", 9, 10),    // 90%: bonus applies
		eligibleCourse("finished", 10, 10), // 100%: no bonus
	}
	sessions := []models.Session{
		sessionOn("almost", 0, 90),
		sessionOn("finished", 0, 90),
	}

	recs := Recommend(sessions, courses, testNow)

	byID := map[string]Recommendation{}
	for _, r := range recs {
		byID[r.CourseID] = r
	}

	// almost: gap 4 + staleness 0 + weekly 0 + bonus 10 = 14
	if got := byID["almost"].Score; got != 14 {
		t.Errorf("almost: score = %d, want 14", got)
	}
	// finished: gap 0 + staleness 0 + weekly 0 + bonus 0 = 0
	if got := byID["finished"].Score; got != 0 {
		t.Errorf("finished: score = %d, want 0", got)
	}
}

func TestRecommend_StalenessSaturates(t *testing.T) {
	courses := []models.Course{
		eligibleCourse("sixdays", 5, 10),
		eligibleCourse("yeargap", 5, 10),
	}
	sessions := []models.Session{
		sessionOn("sixdays", 6, 45),
		sessionOn("yeargap", 365, 45),
	}

	recs := Recommend(sessions, courses, testNow)

	// staleness capped at 30 for both: 6*5 = 30 and min(365*5, 30) = 30.
	// They differ only in the weekly band: sixdays' 45 minutes fall inside
	// the window (band 10), yeargap has nothing this week (band 20).
	// sixdays: 20 + 30 + 10 + 0 = 60; yeargap: 20 + 30 + 20 + 0 = 70.
	byID := map[string]int{}
	for _, r := range recs {
		byID[r.CourseID] = r.Score
	}
	if byID["sixdays"] != 60 {
		t.Errorf("sixdays: score = %d, want 60", byID["sixdays"])
	}
	if byID["yeargap"] != 70 {
		t.Errorf("yeargap: score = %d, want 70", byID["yeargap"])
	}
}

// Spec scenario: a neglected, barely-started course must outrank a nearly
// finished course that was studied today.
func TestRecommend_NeglectedOutranksActive(t *testing.T) {
	courses := []models.Course{
		eligibleCourse("b", 9, 10), // listed first to rule out ordering luck
		eligibleCourse("a", 2, 10),
	}
	sessions := []models.Session{
		sessionOn("a", 10, 30),
		sessionOn("b", 0, 60),
	}

	recs := Recommend(sessions, courses, testNow)

	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0].CourseID != "a" {
		t.Errorf("rank 1 = %s, want a", recs[0].CourseID)
	}
	if recs[0].Priority != PriorityHigh {
		t.Errorf("a: priority = %s, want high", recs[0].Priority)
	}
	if p := recs[1].Priority; p != PriorityLow && p != PriorityMedium {
		t.Errorf("b: priority = %s, want low or medium", p)
	}
}

func TestRecommend_TieBreakKeepsCourseOrder(t *testing.T) {
	// identical courses produce identical scores; the earlier one must rank
	// first on every invocation
	courses := []models.Course{
		eligibleCourse("first", 3, 10),
		eligibleCourse("second", 3, 10),
	}

	recs := Recommend(nil, courses, testNow)

	if recs[0].CourseID != "first" || recs[1].CourseID != "second" {
		t.Errorf("tie order = %s,%s, want first,second", recs[0].CourseID, recs[1].CourseID)
	}
}

func TestRecommend_Idempotent(t *testing.T) {
	courses := []models.Course{
		eligibleCourse("a", 1, 10),
		eligibleCourse("b", 7, 10),
		eligibleCourse("c", 9, 10),
	}
	sessions := []models.Session{
		sessionOn("a", 1, 20),
		sessionOn("b", 4, 60),
		sessionOn("c", 12, 45),
	}

	one := Recommend(sessions, courses, testNow)
	two := Recommend(sessions, courses, testNow)

	if !reflect.DeepEqual(one, two) {
		t.Errorf("same snapshot and now produced different lists:\n%v\n%v", one, two)
	}
}

func TestRecommend_OrphanSessionIgnored(t *testing.T) {
	courses := []models.Course{eligibleCourse("known", 5, 10)}
	sessions := []models.Session{
		{ID: "orphan", CourseID: "deleted-course", Duration: 60, Date: DayStart(testNow)},
		sessionOn("known", 1, 30),
	}

	recs := Recommend(sessions, courses, testNow)

	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	// the orphan's 60 minutes must not count toward known's weekly band:
	// 30 weekly minutes puts it in the 10-point band, not 0
	// known: gap 20 + staleness 5 + weekly 10 + bonus 0 = 35
	if got := recs[0].Score; got != 35 {
		t.Errorf("score = %d, want 35", got)
	}
}

func TestReasonRules_FixedOrder(t *testing.T) {
	day := func(daysAgo int) *time.Time {
		d := DayStart(testNow.AddDate(0, 0, -daysAgo))
		return &d
	}

	cases := []struct {
		name  string
		stats courseStats
		want  string
	}{
		{
			name:  "low completion wins over staleness",
			stats: courseStats{completionPct: 10, lastStudy: day(20), daysSince: 20},
			want:  "Only 10% complete. Focus needed to catch up.",
		},
		{
			name:  "staleness",
			stats: courseStats{completionPct: 50, lastStudy: day(9), daysSince: 9},
			want:  "Haven't studied in 9 days. Time to review!",
		},
		{
			name:  "never studied reads as overdue",
			stats: courseStats{completionPct: 50},
			want:  "Haven't studied yet. Time to start!",
		},
		{
			name:  "weekly under-study",
			stats: courseStats{completionPct: 50, lastStudy: day(2), daysSince: 2, weeklyMinutes: 15},
			want:  "Only 15 minutes this week. Increase study time.",
		},
		{
			name:  "near completion",
			stats: courseStats{completionPct: 85, lastStudy: day(1), daysSince: 1, weeklyMinutes: 45},
			want:  "85% complete. Almost there! Finish strong.",
		},
		{
			name:  "steady fallback",
			stats: courseStats{completionPct: 60, lastStudy: day(1), daysSince: 1, weeklyMinutes: 45},
			want:  "Maintain steady progress. 60% complete.",
		},
	}

	for _, tc := range cases {
		if got := reasonFor(tc.stats); got != tc.want {
			t.Errorf("%s: reason = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSuggestedMinutes(t *testing.T) {
	cases := []struct {
		prio Priority
		avg  int
		want int
	}{
		{PriorityHigh, 20, 45},
		{PriorityHigh, 60, 60},
		{PriorityMedium, 20, 30},
		{PriorityMedium, 50, 50},
		{PriorityLow, 20, 20},
		{PriorityLow, 90, 90},
	}

	for _, tc := range cases {
		if got := suggestedMinutes(tc.prio, tc.avg); got != tc.want {
			t.Errorf("suggestedMinutes(%s, %d) = %d, want %d", tc.prio, tc.avg, got, tc.want)
		}
	}
}

func TestStatsFor_Defaults(t *testing.T) {
	c := eligibleCourse("lonely", 0, 10)

	stats := statsFor(&c, nil, testNow)

	if stats.lastStudy != nil {
		t.Error("no sessions: lastStudy should be nil")
	}
	if stats.avgMinutes != 30 {
		t.Errorf("no sessions: avgMinutes = %d, want default 30", stats.avgMinutes)
	}
	if stats.weeklyMinutes != 0 {
		t.Errorf("no sessions: weeklyMinutes = %d, want 0", stats.weeklyMinutes)
	}
}

func TestStatsFor_AverageRounds(t *testing.T) {
	c := eligibleCourse("avg", 0, 10)
	sessions := []models.Session{
		sessionOn("avg", 1, 20),
		sessionOn("avg", 2, 25),
	}

	stats := statsFor(&c, sessions, testNow)

	if stats.avgMinutes != 23 { // 22.5 rounds to 23
		t.Errorf("avgMinutes = %d, want 23", stats.avgMinutes)
	}
	if stats.daysSince != 1 {
		t.Errorf("daysSince = %d, want 1", stats.daysSince)
	}
}
