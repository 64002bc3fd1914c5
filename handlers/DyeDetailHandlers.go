package handlers

import (
	"database/sql"
	"errors"
	"jewelerp/models"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetDyeDetails godoc
// @Summary      List dye records
// @Description  Returns dye records newest first, optionally filtered by job card or searched by dye number, part name or SKU.
// @Tags         dye
// @Produce      json
// @Param        Authorization  header  string  true   "Session ID"
// @Param        jobcard_id     query   string  false  "Filter by job card"
// @Param        search         query   string  false  "Search dye number, part name or SKU"
// @Success      200  {array}   models.DyeDetailGorm
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/dye-details [get]
func GetDyeDetails(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		query := gormDB.Model(&models.DyeDetailGorm{})
		if jobcardID := c.Query("jobcard_id"); jobcardID != "" {
			query = query.Where("jobcard_id = ?", jobcardID)
		}
		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			query = query.Where("dye_number ILIKE ? OR part_name ILIKE ? OR sku_number ILIKE ?", like, like, like)
		}

		var details []models.DyeDetailGorm
		if err := query.Order("created_at DESC").Find(&details).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dye records"})
			return
		}

		c.JSON(http.StatusOK, details)
	}
}

// CreateDyeDetail godoc
// @Summary      Create a dye record
// @Tags         dye
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                true  "Session ID"
// @Param        detail         body    models.DyeDetailGorm  true  "Dye record"
// @Success      201  {object}  models.DyeDetailGorm
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/dye-details [post]
func CreateDyeDetail(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var detail models.DyeDetailGorm
		if err := c.ShouldBindJSON(&detail); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		detail.DyeNumber = strings.TrimSpace(detail.DyeNumber)
		if detail.DyeNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dye number is required"})
			return
		}

		if err := gormDB.Create(&detail).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dye record"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "dye",
			IPAddress:    session.IPAddress,
			Description:  "Created dye record " + detail.DyeNumber,
			EventName:    "create_dye_detail",
			JobcardID:    detail.JobcardID,
		})

		c.JSON(http.StatusCreated, detail)
	}
}

// UpdateDyeDetail godoc
// @Summary      Update a dye record
// @Tags         dye
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                true  "Session ID"
// @Param        id             path    string                true  "Dye record ID"
// @Param        detail         body    models.DyeDetailGorm  true  "Dye record"
// @Success      200  {object}  models.DyeDetailGorm
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/dye-details/{id} [put]
func UpdateDyeDetail(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var existing models.DyeDetailGorm
		if err := gormDB.First(&existing, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Dye record not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dye record"})
			return
		}

		var detail models.DyeDetailGorm
		if err := c.ShouldBindJSON(&detail); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		detail.ID = existing.ID
		detail.CreatedAt = existing.CreatedAt
		detail.UpdatedAt = time.Now()
		if detail.JobcardID == "" {
			detail.JobcardID = existing.JobcardID
		}

		if err := gormDB.Save(&detail).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dye record"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "dye",
			IPAddress:    session.IPAddress,
			Description:  "Updated dye record " + detail.DyeNumber,
			EventName:    "update_dye_detail",
			JobcardID:    detail.JobcardID,
		})

		c.JSON(http.StatusOK, detail)
	}
}

// DeleteDyeDetail godoc
// @Summary      Delete a dye record
// @Tags         dye
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Dye record ID"
// @Success      200  {object}  models.MessageResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/dye-details/{id} [delete]
func DeleteDyeDetail(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		result := gormDB.Delete(&models.DyeDetailGorm{}, "id = ?", c.Param("id"))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete dye record"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dye record not found"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "dye",
			IPAddress:    session.IPAddress,
			Description:  "Deleted dye record",
			EventName:    "delete_dye_detail",
		})

		c.JSON(http.StatusOK, gin.H{"message": "Dye record deleted"})
	}
}
