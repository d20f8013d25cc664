package handler

import (
	"net/http"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/engine"
	"github.com/trieu2004160/studytrack-server/internal/middleware"
	"github.com/trieu2004160/studytrack-server/internal/models"
	"github.com/trieu2004160/studytrack-server/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AnalyticsHandler serves the weekly analytics and the recommendation list.
// All computation happens in the engine package over an in-memory snapshot;
// these handlers only load the snapshot and shape the response.
type AnalyticsHandler struct {
	DB *gorm.DB
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{DB: db}
}

// snapshot loads the user's full collections in stable insertion order.
// Course order matters: it is the recommendation tie-break.
func (h *AnalyticsHandler) snapshot(userID uint) ([]models.Session, []models.Course, error) {
	var sessions []models.Session
	if err := h.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, nil, err
	}
	var courses []models.Course
	if err := h.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&courses).Error; err != nil {
		return nil, nil, err
	}
	return sessions, courses, nil
}

// GetWeekly returns the 7-day daily-minutes series, per-course completion
// and the trailing-week total.
func (h *AnalyticsHandler) GetWeekly(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	sessions, courses, err := h.snapshot(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load data")
		return
	}

	now := time.Now()
	util.Success(c, util.Response{
		"daily":        engine.DailySeries(sessions, now),
		"completion":   engine.CompletionSeries(courses),
		"week_minutes": engine.WeekTotal(sessions, now),
	})
}

// GetRecommendations returns the ranked top-3 study suggestions.
func (h *AnalyticsHandler) GetRecommendations(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	sessions, courses, err := h.snapshot(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load data")
		return
	}

	util.Success(c, util.Response{
		"recommendations": engine.Recommend(sessions, courses, time.Now()),
	})
}
