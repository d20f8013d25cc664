package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/middleware"
	"github.com/trieu2004160/studytrack-server/internal/models"
	"github.com/trieu2004160/studytrack-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler writes the user's session history as CSV or XLSX.
type ExportHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewExportHandler(db *gorm.DB, encryptKey string) *ExportHandler {
	return &ExportHandler{
		DB:         db,
		EncryptKey: encryptKey,
	}
}

func (h *ExportHandler) loadSessions(userID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := h.DB.Where("user_id = ?", userID).
		Order("date ASC, created_at ASC").
		Find(&sessions).Error
	return sessions, err
}

var exportHeader = []string{"date", "course", "duration_minutes", "completed", "notes"}

func (h *ExportHandler) exportRow(s *models.Session) []string {
	name := s.CourseName
	if name == "" {
		name = s.CourseID
	}
	return []string{
		s.Date.Format("2006-01-02"),
		name,
		strconv.Itoa(s.Duration),
		strconv.FormatBool(s.Completed),
		util.DecryptField(h.EncryptKey, s.Notes),
	}
}

// ExportCSV streams the session history as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	sessions, err := h.loadSessions(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load sessions")
		return
	}

	fileName := fmt.Sprintf("study-sessions-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for i := range sessions {
		_ = w.Write(h.exportRow(&sessions[i]))
	}
	w.Flush()
}

// ExportXLSX writes the session history as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	sessions, err := h.loadSessions(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load sessions")
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sessions"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for row := range sessions {
		for col, value := range h.exportRow(&sessions[row]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	fileName := fmt.Sprintf("study-sessions-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
	}
}
