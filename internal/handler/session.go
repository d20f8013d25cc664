package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/engine"
	"github.com/trieu2004160/studytrack-server/internal/middleware"
	"github.com/trieu2004160/studytrack-server/internal/models"
	"github.com/trieu2004160/studytrack-server/internal/notify"
	"github.com/trieu2004160/studytrack-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionHandler serves study-session CRUD. Editing reminder fields is what
// drives the notification scheduler; nothing else in the system touches it.
type SessionHandler struct {
	DB         *gorm.DB
	EncryptKey string
	Notifier   *notify.Scheduler
}

func NewSessionHandler(db *gorm.DB, encryptKey string, notifier *notify.Scheduler) *SessionHandler {
	return &SessionHandler{
		DB:         db,
		EncryptKey: encryptKey,
		Notifier:   notifier,
	}
}

// ---------- request/response shapes ----------

type sessionReq struct {
	CourseID        string `json:"course_id" binding:"required"`
	Duration        int    `json:"duration" binding:"required"`
	Date            string `json:"date"` // YYYY-MM-DD, defaults to today
	Notes           string `json:"notes" binding:"max=1024"`
	Completed       bool   `json:"completed"`
	ReminderEnabled bool   `json:"reminder_enabled"`
	ReminderTime    string `json:"reminder_time"` // HH:mm
}

type sessionResp struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"course_id"`
	CourseName      string    `json:"course_name"`
	CourseIcon      string    `json:"course_icon,omitempty"`
	Duration        int       `json:"duration"`
	Date            string    `json:"date"`
	Notes           string    `json:"notes,omitempty"`
	Completed       bool      `json:"completed"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	ReminderTime    string    `json:"reminder_time,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (h *SessionHandler) toSessionResp(s *models.Session) sessionResp {
	return sessionResp{
		ID:              s.ID,
		CourseID:        s.CourseID,
		CourseName:      s.CourseName,
		CourseIcon:      s.CourseIcon,
		Duration:        s.Duration,
		Date:            s.Date.Format("2006-01-02"),
		Notes:           util.DecryptField(h.EncryptKey, s.Notes),
		Completed:       s.Completed,
		ReminderEnabled: s.ReminderEnabled,
		ReminderTime:    s.ReminderTime,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// maxPlanAheadDays bounds how far out a session can be planned.
const maxPlanAheadDays = 365

// parseSessionDate resolves the request date: empty means today. Future
// dates are allowed — a session may be a planned unit of study with a
// reminder — up to a year out. The result is day-truncated.
func parseSessionDate(dateStr string, now time.Time) (time.Time, error) {
	date := engine.DayStart(now)
	if dateStr != "" {
		if err := util.ValidateDate(dateStr); err != nil {
			return time.Time{}, err
		}
		parsed, _ := time.ParseInLocation("2006-01-02", dateStr, now.Location())
		date = parsed
	}
	if engine.DaysBetween(now, date) > maxPlanAheadDays {
		return time.Time{}, fmt.Errorf("date is more than a year ahead")
	}
	return date, nil
}

// validateSessionReq runs the field checks shared by create and update.
func validateSessionReq(req *sessionReq) error {
	if err := util.ValidateDuration(req.Duration); err != nil {
		return err
	}
	if req.ReminderEnabled {
		if err := util.ValidateReminderTime(req.ReminderTime); err != nil {
			return err
		}
	}
	return nil
}

// reminderInstant combines the session's calendar day with its HH:mm
// reminder time in the server's location.
func reminderInstant(date time.Time, reminderTime string) time.Time {
	clock, err := time.Parse("15:04", reminderTime)
	if err != nil {
		return time.Time{}
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location())
}

// syncReminder cancels the session's previous reminder and arms a new one if
// the reminder is enabled and still in the future. The scheduler handle is
// stored back on the session.
func (h *SessionHandler) syncReminder(s *models.Session) {
	if s.NotificationID != "" {
		h.Notifier.Cancel(s.NotificationID)
		s.NotificationID = ""
	}
	if !s.ReminderEnabled || s.ReminderTime == "" {
		return
	}

	at := reminderInstant(s.Date, s.ReminderTime)
	if !at.After(time.Now()) {
		return // scheduling in the past is a no-op by contract
	}

	title := "Time to study"
	if s.CourseName != "" {
		title = "Time to study " + s.CourseName
	}
	body := fmt.Sprintf("You planned %d minutes today.", s.Duration)

	handle, err := h.Notifier.Schedule(s.ID, title, body, at)
	if err == nil {
		s.NotificationID = handle
	}
}

// ---------- create ----------

func (h *SessionHandler) CreateSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req sessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := validateSessionReq(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	date, err := parseSessionDate(req.Date, time.Now())
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	// denormalize display copy from the course record; a session may
	// legitimately reference a course we do not know about yet
	var courseName, courseIcon string
	var course models.Course
	if err := h.DB.Where("id = ? AND user_id = ?", req.CourseID, user.ID).First(&course).Error; err == nil {
		courseName = course.Name
		courseIcon = course.Icon
	}

	notes, err := util.EncryptField(h.EncryptKey, req.Notes)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to encrypt notes")
		return
	}

	session := models.Session{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		CourseID:        req.CourseID,
		CourseName:      courseName,
		CourseIcon:      courseIcon,
		Duration:        req.Duration,
		Date:            date,
		Notes:           notes,
		Completed:       req.Completed,
		ReminderEnabled: req.ReminderEnabled,
		ReminderTime:    req.ReminderTime,
	}

	h.syncReminder(&session)

	if err := h.DB.Create(&session).Error; err != nil {
		h.Notifier.Cancel(session.NotificationID)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save session")
		return
	}

	util.Success(c, util.Response{
		"session": h.toSessionResp(&session),
	})
}

// ---------- update ----------

func (h *SessionHandler) UpdateSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id := c.Param("id")

	var req sessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := validateSessionReq(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	date, err := parseSessionDate(req.Date, time.Now())
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var session models.Session
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "session not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load session")
		}
		return
	}

	notes, err := util.EncryptField(h.EncryptKey, req.Notes)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to encrypt notes")
		return
	}

	if session.CourseID != req.CourseID {
		session.CourseID = req.CourseID
		session.CourseName = ""
		session.CourseIcon = ""
		var course models.Course
		if err := h.DB.Where("id = ? AND user_id = ?", req.CourseID, user.ID).First(&course).Error; err == nil {
			session.CourseName = course.Name
			session.CourseIcon = course.Icon
		}
	}

	session.Duration = req.Duration
	session.Date = date
	session.Notes = notes
	session.Completed = req.Completed
	session.ReminderEnabled = req.ReminderEnabled
	session.ReminderTime = req.ReminderTime

	h.syncReminder(&session)

	if err := h.DB.Save(&session).Error; err != nil {
		h.Notifier.Cancel(session.NotificationID)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save session")
		return
	}

	util.Success(c, util.Response{
		"session": h.toSessionResp(&session),
	})
}

// ---------- delete ----------

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id := c.Param("id")

	var session models.Session
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "session not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load session")
		}
		return
	}

	h.Notifier.Cancel(session.NotificationID)

	if err := h.DB.Delete(&session).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete session")
		return
	}

	util.Success(c, util.Response{
		"message": "deleted",
	})
}

// ---------- list ----------

// ListSessions returns the user's sessions with optional date-range and
// course filters, newest first, plus a summary over the filtered set.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.Session{}).Where("user_id = ?", user.ID)

	if startStr := c.Query("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start date must be YYYY-MM-DD")
			return
		}
		base = base.Where("date >= ?", start)
	}
	if endStr := c.Query("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end date must be YYYY-MM-DD")
			return
		}
		// end date is inclusive: filter < end+1d
		base = base.Where("date < ?", end.AddDate(0, 0, 1))
	}
	if courseID := c.Query("course_id"); courseID != "" {
		base = base.Where("course_id = ?", courseID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count sessions")
		return
	}

	var sessions []models.Session
	if err := base.Session(&gorm.Session{}).
		Order("date DESC, created_at DESC").
		Limit(size).
		Offset(offset).
		Find(&sessions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list sessions")
		return
	}

	items := make([]sessionResp, 0, len(sessions))
	for i := range sessions {
		items = append(items, h.toSessionResp(&sessions[i]))
	}

	// summary over the same filters
	var all []models.Session
	if err := base.Session(&gorm.Session{}).Find(&all).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to summarize sessions")
		return
	}
	totalMinutes := 0
	completedCount := 0
	for i := range all {
		totalMinutes += all[i].Duration
		if all[i].Completed {
			completedCount++
		}
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
		"summary": gin.H{
			"total_minutes":   totalMinutes,
			"completed_count": completedCount,
			"session_count":   len(all),
		},
	})
}
