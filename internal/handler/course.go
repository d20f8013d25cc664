package handler

import (
	"log"
	"net/http"

	"github.com/trieu2004160/studytrack-server/internal/cache"
	"github.com/trieu2004160/studytrack-server/internal/catalog"
	"github.com/trieu2004160/studytrack-server/internal/middleware"
	"github.com/trieu2004160/studytrack-server/internal/models"
	"github.com/trieu2004160/studytrack-server/internal/store"
	"github.com/trieu2004160/studytrack-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseHandler serves course CRUD, the catalog refresh, and the cache
// reset operation.
type CourseHandler struct {
	DB      *gorm.DB
	Catalog *catalog.Client
	Cache   *cache.Cache
}

func NewCourseHandler(db *gorm.DB, cat *catalog.Client, snap *cache.Cache) *CourseHandler {
	return &CourseHandler{
		DB:      db,
		Catalog: cat,
		Cache:   snap,
	}
}

// ---------- request/response shapes ----------

type courseReq struct {
	Name             string `json:"name" binding:"required,max=128"`
	Icon             string `json:"icon" binding:"max=32"`
	TotalLessons     int    `json:"total_lessons"`
	CompletedLessons int    `json:"completed_lessons"`
}

type courseResp struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Icon             string `json:"icon,omitempty"`
	TotalLessons     int    `json:"total_lessons"`
	CompletedLessons int    `json:"completed_lessons"`
}

func toCourseResp(c *models.Course) courseResp {
	return courseResp{
		ID:               c.ID,
		Name:             c.Name,
		Icon:             c.Icon,
		TotalLessons:     c.TotalLessons,
		CompletedLessons: c.CompletedLessons,
	}
}

// ---------- CRUD ----------

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req courseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := util.ValidateLessonCounts(req.CompletedLessons, req.TotalLessons); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	course := models.Course{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		Name:             req.Name,
		Icon:             req.Icon,
		TotalLessons:     req.TotalLessons,
		CompletedLessons: req.CompletedLessons,
	}
	if err := h.DB.Create(&course).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save course")
		return
	}

	util.Success(c, util.Response{
		"course": toCourseResp(&course),
	})
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var courses []models.Course
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&courses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list courses")
		return
	}

	items := make([]courseResp, 0, len(courses))
	for i := range courses {
		items = append(items, toCourseResp(&courses[i]))
	}

	util.Success(c, util.Response{
		"items": items,
	})
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	id := c.Param("id")

	var req courseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := util.ValidateLessonCounts(req.CompletedLessons, req.TotalLessons); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var course models.Course
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load course")
		}
		return
	}

	// sessions keep their denormalized course name; only the course record
	// itself is renamed
	course.Name = req.Name
	course.Icon = req.Icon
	course.TotalLessons = req.TotalLessons
	course.CompletedLessons = req.CompletedLessons

	if err := h.DB.Save(&course).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save course")
		return
	}

	util.Success(c, util.Response{
		"course": toCourseResp(&course),
	})
}

// ---------- catalog refresh ----------

// RefreshFromCatalog fetches the user's records from the remote catalog,
// merges them into the local collections, persists the result and updates
// the snapshot cache. When the catalog is unreachable the last-known-good
// snapshot is served instead, flagged as stale.
func (h *CourseHandler) RefreshFromCatalog(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var localCourses []models.Course
	if err := h.DB.Where("user_id = ?", user.ID).Order("created_at ASC").Find(&localCourses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load courses")
		return
	}
	var localSessions []models.Session
	if err := h.DB.Where("user_id = ?", user.ID).Order("created_at ASC").Find(&localSessions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load sessions")
		return
	}

	ctx := c.Request.Context()
	remoteCourses, err := h.Catalog.FetchCourses(ctx, user.ID)
	var remoteSessions []models.Session
	if err == nil {
		remoteSessions, err = h.Catalog.FetchSessions(ctx, user.ID)
	}
	if err != nil {
		log.Printf("catalog refresh for user %d failed: %v", user.ID, err)

		// fall back to last-known-good data; the client shows a transient
		// error and keeps whatever it has
		if snap := h.Cache.Load(user.ID); snap != nil {
			util.Success(c, util.Response{
				"stale":    true,
				"saved_at": snap.SavedAt,
				"courses":  snap.Courses,
				"sessions": snap.Sessions,
				"message":  "catalog unavailable, showing cached data",
			})
			return
		}
		util.Error(c, http.StatusBadGateway, util.CodeUpstream, "catalog unavailable")
		return
	}

	mergedCourses := store.MergeCourses(localCourses, remoteCourses)
	mergedSessions := store.MergeSessions(localSessions, remoteSessions)

	if err := h.persistMerged(mergedSessions, mergedCourses); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to persist merged data")
		return
	}
	if err := h.Cache.Save(user.ID, mergedSessions, mergedCourses); err != nil {
		// cache write failure is not fatal for the refresh itself
		log.Printf("snapshot cache save for user %d failed: %v", user.ID, err)
	}

	util.Success(c, util.Response{
		"stale":         false,
		"course_count":  len(mergedCourses),
		"session_count": len(mergedSessions),
	})
}

func (h *CourseHandler) persistMerged(sessions []models.Session, courses []models.Course) error {
	return h.DB.Transaction(func(tx *gorm.DB) error {
		if len(courses) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&courses).Error; err != nil {
				return err
			}
		}
		if len(sessions) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sessions).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ---------- cache reset ----------

// ResetCache bulk-clears both collections and the snapshot file. This is the
// only flow that deletes courses.
func (h *CourseHandler) ResetCache(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&models.Course{}).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to clear data")
		return
	}

	if err := h.Cache.Reset(user.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to clear snapshot")
		return
	}

	util.Success(c, util.Response{
		"message": "cleared",
	})
}
