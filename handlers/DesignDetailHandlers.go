package handlers

import (
	"database/sql"
	"errors"
	"jewelerp/models"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetDesignDetail godoc
// @Summary      Get design details for a job card
// @Tags         design
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Job card ID"
// @Success      200  {object}  models.DesignDetailGorm
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/design [get]
func GetDesignDetail(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
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

		var detail models.DesignDetailGorm
		err := gormDB.Where("jobcard_id = ?", c.Param("id")).First(&detail).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No design details recorded for this job card"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load design details"})
			return
		}

		c.JSON(http.StatusOK, detail)
	}
}

// UpsertDesignDetail godoc
// @Summary      Create or update design details for a job card
// @Description  One design record exists per job card; saving again overwrites it.
// @Tags         design
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                   true  "Session ID"
// @Param        id             path    string                   true  "Job card ID"
// @Param        detail         body    models.DesignDetailGorm  true  "Design details"
// @Success      200  {object}  models.DesignDetailGorm
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/design [put]
func UpsertDesignDetail(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
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

		var detail models.DesignDetailGorm
		if err := c.ShouldBindJSON(&detail); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		detail.JobcardID = c.Param("id")
		detail.UpdatedAt = time.Now()

		err = gormDB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "jobcard_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"date", "cad_photo_url", "size_dimensions", "stone_specifications",
				"cad_by", "cad_completion_date", "cad_file_link", "cam_vendor",
				"cam_sent_date", "cam_received_date", "cam_weight_grams",
				"dye_vendor", "dye_weight", "final_dye_no", "dye_creation_date", "updated_at",
			}),
		}).Create(&detail).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save design details"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "design",
			IPAddress:    session.IPAddress,
			Description:  "Saved design details",
			EventName:    "upsert_design_detail",
			JobcardID:    detail.JobcardID,
		})

		c.JSON(http.StatusOK, detail)
	}
}
