package handlers

import (
	"database/sql"
	"jewelerp/models"
	"jewelerp/repository"
	"jewelerp/services"
	"jewelerp/storage"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// stageOrderMode reads the configured ordering discipline. Freeform is the
// default: the workshop may complete stages in any order.
func stageOrderMode() string {
	mode := os.Getenv("STAGE_ORDER_MODE")
	if mode == repository.OrderModeSequential {
		return repository.OrderModeSequential
	}
	return repository.OrderModeFreeform
}

// GetJobCardTracking godoc
// @Summary      Get the stage tracking view for a job card
// @Description  Returns the job card with its category's stage catalog joined against recorded ledger entries. Stages without an entry resolve to pending. Includes the progress summary.
// @Tags         stage-tracking
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Job card ID"
// @Success      200  {object}  object
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/tracking [get]
func GetJobCardTracking(db *sql.DB) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, gin.H{
			"jobcard":  jobcard,
			"stages":   repository.BuildStageRows(stages, entries),
			"progress": repository.ComputeProgress(entries),
		})
	}
}

// CompleteStage godoc
// @Summary      Complete a production stage for a job card
// @Description  Records the completion of one stage. Validates the payload before any write: handover person is required, tracked metric fields must be empty or non-negative numbers, untracked fields are ignored. Writes are upserts keyed by (jobcard_id, stage_id), so re-completing a stage overwrites the earlier record. Returns the stored entry and the recomputed progress.
// @Tags         stage-tracking
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                         true  "Session ID"
// @Param        id             path    string                         true  "Job card ID"
// @Param        stage_id       path    string                         true  "Catalog stage ID"
// @Param        completion     body    models.StageCompletionRequest  true  "Completion details"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/jobcards/{id}/stages/{stage_id}/complete [post]
func CompleteStage(db *sql.DB) gin.HandlerFunc {
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
		stageID := c.Param("stage_id")

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

		var stageDef *models.StageDefinition
		for i := range stages {
			if stages[i].ID == stageID {
				stageDef = &stages[i]
				break
			}
		}
		if stageDef == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stage not found in this job card's catalog"})
			return
		}

		var req models.StageCompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		entries, err := storage.GetStageEntries(db, jobcardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage tracking"})
			return
		}

		if verr := repository.CheckStageOrder(stageOrderMode(), stages, entries, stageID); verr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "code": verr.Code})
			return
		}

		entry, verr := repository.BuildCompletionEntry(jobcardID, *stageDef, req, time.Now())
		if verr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "code": verr.Code})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback()

		if err := storage.UpsertStageEntry(tx, entry); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record stage completion"})
			return
		}

		entries[entry.StageID] = *entry
		allDone := repository.AllStagesCompleted(stages, entries)

		if err := storage.UpdateJobCardStage(tx, jobcardID, stageDef.StageName, allDone); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job card"})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record stage completion"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "stage_tracking",
			IPAddress:    session.IPAddress,
			Description:  "Completed stage " + stageDef.StageName + " on " + jobcard.JobcardNo,
			EventName:    "complete_stage",
			JobcardID:    jobcardID,
		})

		go func() {
			if err := services.NotifyStageCompleted(db, jobcard.JobcardNo, stageDef.StageName, allDone); err != nil {
				log.Printf("Stage completion notification failed: %v", err)
			}
		}()

		c.JSON(http.StatusOK, gin.H{
			"entry":          entry,
			"progress":       repository.ComputeProgress(entries),
			"jobcard_status": repository.JobCardStatusAfterCompletion(jobcard.Status, allDone),
			"current_stage":  stageDef.StageName,
		})
	}
}
