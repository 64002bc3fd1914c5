package handlers

import (
	"database/sql"
	"jewelerp/models"
	"jewelerp/repository"
	"jewelerp/storage"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetJobCards godoc
// @Summary      List job cards
// @Description  Returns job cards newest first, with client name and inquiry number joined from the source inquiry. Supports a status filter and a search term matched against job card number and client name.
// @Tags         jobcards
// @Produce      json
// @Param        Authorization  header  string  true   "Session ID"
// @Param        status         query   string  false  "Filter by status"  Enums(in_progress, completed, on_hold, cancelled)
// @Param        search         query   string  false  "Search by job card number or client name"
// @Success      200  {array}   models.JobCard
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards [get]
func GetJobCards(db *sql.DB) gin.HandlerFunc {
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

		cards, err := storage.ListJobCards(db, c.Query("status"), c.Query("search"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job cards"})
			return
		}

		c.JSON(http.StatusOK, cards)
	}
}

// GetJobCardByID godoc
// @Summary      Get a job card
// @Description  Returns one job card with its inquiry details and full stage ledger.
// @Tags         jobcards
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Job card ID"
// @Success      200  {object}  object
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id} [get]
func GetJobCardByID(db *sql.DB) gin.HandlerFunc {
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

		jobcardID := c.Param("id")
		jobcard, err := storage.GetJobCard(db, jobcardID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Job card not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job card"})
			return
		}

		entries, err := storage.GetStageEntries(db, jobcardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage tracking"})
			return
		}

		tracking := make([]models.StageTrackingEntry, 0, len(entries))
		for _, e := range entries {
			tracking = append(tracking, e)
		}

		c.JSON(http.StatusOK, gin.H{
			"jobcard":  jobcard,
			"tracking": tracking,
			"progress": repository.ComputeProgress(entries),
		})
	}
}

// UpdateJobCardStatus godoc
// @Summary      Update job card status
// @Description  Sets the lifecycle status of a job card (hold, cancel, reopen).
// @Tags         jobcards
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Job card ID"
// @Param        body           body    object  true  "New status"
// @Success      200  {object}  models.MessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/status [put]
func UpdateJobCardStatus(db *sql.DB) gin.HandlerFunc {
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

		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		switch req.Status {
		case models.JobCardInProgress, models.JobCardCompleted, models.JobCardOnHold, models.JobCardCancelled:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown job card status: " + req.Status})
			return
		}

		jobcardID := c.Param("id")
		result, err := db.Exec(`UPDATE jobcards SET status = $1, updated_at = NOW() WHERE id = $2`, req.Status, jobcardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job card status"})
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job card not found"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "jobcard",
			IPAddress:    session.IPAddress,
			Description:  "Changed job card status to " + req.Status,
			EventName:    "update_jobcard_status",
			JobcardID:    jobcardID,
		})

		c.JSON(http.StatusOK, gin.H{"message": "Job card status updated"})
	}
}

// PushToWorkshop godoc
// @Summary      Push a job card to the workshop
// @Description  Marks the job card as released to the workshop floor so its stages become available for tracking.
// @Tags         jobcards
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Job card ID"
// @Success      200  {object}  models.MessageResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/push [post]
func PushToWorkshop(db *sql.DB) gin.HandlerFunc {
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

		jobcardID := c.Param("id")
		result, err := db.Exec(`UPDATE jobcards SET pushed_to_workshop = TRUE, updated_at = NOW() WHERE id = $1`, jobcardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to push job card to workshop"})
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job card not found"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "jobcard",
			IPAddress:    session.IPAddress,
			Description:  "Pushed job card to workshop",
			EventName:    "push_to_workshop",
			JobcardID:    jobcardID,
		})

		c.JSON(http.StatusOK, gin.H{"message": "Job card pushed to workshop"})
	}
}

// GetJobCardPrintView godoc
// @Summary      Get the printable job card feed
// @Description  Returns the job card, its stage catalog and recorded tracking entries in the shape the print renderer expects.
// @Tags         jobcards
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Job card ID"
// @Success      200  {object}  object
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/print [get]
func GetJobCardPrintView(db *sql.DB) gin.HandlerFunc {
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

		jobcardID := c.Param("id")
		jobcard, err := storage.GetJobCard(db, jobcardID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Job card not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job card"})
			return
		}

		stages, err := storage.ListStagesByCategory(db, jobcard.ProductCategory)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage catalog"})
			return
		}

		entries, err := storage.GetStageEntries(db, jobcardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage tracking"})
			return
		}

		tracking := make([]models.StageTrackingEntry, 0, len(entries))
		for _, stage := range stages {
			if e, ok := entries[stage.ID]; ok {
				tracking = append(tracking, e)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"jobcard":  jobcard,
			"stages":   stages,
			"tracking": tracking,
		})
	}
}
