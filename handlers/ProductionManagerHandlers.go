package handlers

import (
	"database/sql"
	"jewelerp/models"
	"jewelerp/repository"
	"jewelerp/services"
	"jewelerp/storage"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ReviewInquiry godoc
// @Summary      Record a production manager review decision
// @Description  Continues or cancels a pending inquiry. Continuing creates the job card in the same transaction and moves the inquiry to continued; cancelling requires a reason. Either way the client is notified by email and production manager devices receive a push.
// @Tags         production-manager
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Inquiry ID"
// @Param        body           body    object  true  "Decision: continue or cancel, with cancellation_reason when cancelling"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/inquiries/{id}/review [post]
func ReviewInquiry(db *sql.DB) gin.HandlerFunc {
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

		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || (user.RoleName != "production_manager" && user.RoleName != "admin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only production managers can review inquiries"})
			return
		}

		var req struct {
			Decision           string `json:"decision"`
			CancellationReason string `json:"cancellation_reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		inquiryID := c.Param("id")
		inq, err := scanInquiry(db.QueryRow(inquirySelect+` WHERE id = $1`, inquiryID))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inquiry"})
			return
		}

		switch req.Decision {
		case "continue":
			jobcard, err := continueInquiry(db, inq)
			if err != nil {
				log.Printf("Failed to continue inquiry %s: %v", inq.InquiryID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job card"})
				return
			}

			SaveActivityLog(db, models.ActivityLog{
				CreatedAt:    time.Now(),
				UserName:     userName,
				HostName:     session.HostName,
				EventContext: "inquiry_review",
				IPAddress:    session.IPAddress,
				Description:  "Continued inquiry " + inq.InquiryID + " as " + jobcard.JobcardNo,
				EventName:    "continue_inquiry",
				JobcardID:    jobcard.ID,
			})

			go func() {
				if err := services.SendInquiryDecisionEmail(inq, models.InquiryContinued, ""); err != nil {
					log.Printf("Inquiry decision email failed: %v", err)
				}
				if err := services.NotifyInquiryDecision(db, inq.InquiryID, jobcard.JobcardNo, false); err != nil {
					log.Printf("Inquiry decision push failed: %v", err)
				}
			}()

			c.JSON(http.StatusOK, gin.H{
				"message": "Inquiry continued, job card created",
				"jobcard": jobcard,
			})

		case "cancel":
			reason := strings.TrimSpace(req.CancellationReason)
			if reason == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cancellation reason is required"})
				return
			}

			_, err := db.Exec(`
				UPDATE inquiries SET pm_review_status = $1, cancellation_reason = $2, updated_at = NOW()
				WHERE id = $3`, models.InquiryCancelled, reason, inquiryID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel inquiry"})
				return
			}

			SaveActivityLog(db, models.ActivityLog{
				CreatedAt:    time.Now(),
				UserName:     userName,
				HostName:     session.HostName,
				EventContext: "inquiry_review",
				IPAddress:    session.IPAddress,
				Description:  "Cancelled inquiry " + inq.InquiryID + ": " + reason,
				EventName:    "cancel_inquiry",
			})

			go func() {
				if err := services.SendInquiryDecisionEmail(inq, models.InquiryCancelled, reason); err != nil {
					log.Printf("Inquiry decision email failed: %v", err)
				}
				if err := services.NotifyInquiryDecision(db, inq.InquiryID, "", true); err != nil {
					log.Printf("Inquiry decision push failed: %v", err)
				}
			}()

			c.JSON(http.StatusOK, gin.H{"message": "Inquiry cancelled"})

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be continue or cancel"})
		}
	}
}

// continueInquiry moves the inquiry to continued and creates its job card in
// one transaction. Either both rows change or neither does.
func continueInquiry(db *sql.DB, inq *models.Inquiry) (*models.JobCard, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE inquiries SET pm_review_status = $1, updated_at = NOW() WHERE id = $2`,
		models.InquiryContinued, inq.ID)
	if err != nil {
		return nil, err
	}

	year := time.Now().Year()
	seq, err := storage.NextJobCardSequence(tx, year)
	if err != nil {
		return nil, err
	}

	orderType := inq.OrderType
	if orderType == "" {
		orderType = "new_design"
	}

	jobcard := models.JobCard{
		JobcardNo:       repository.GenerateJobCardNo(year, seq),
		InquiryID:       inq.ID,
		ProductCategory: inq.ProductCategory,
		OrderType:       orderType,
		Status:          models.JobCardInProgress,
		ClientName:      inq.ClientName,
		InquiryNo:       inq.InquiryID,
	}

	err = tx.QueryRow(`
		INSERT INTO jobcards (jobcard_no, inquiry_id, product_category, order_type, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id, created_at, updated_at`,
		jobcard.JobcardNo, jobcard.InquiryID, jobcard.ProductCategory, jobcard.OrderType, jobcard.Status,
	).Scan(&jobcard.ID, &jobcard.CreatedAt, &jobcard.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &jobcard, nil
}

// UpdateInquiryReviewStatus godoc
// @Summary      Move an inquiry through the review pipeline
// @Description  Sets pm_review_status to any pipeline value (in_review, in_design, production_ready, in_production, completed) without creating a job card.
// @Tags         production-manager
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Inquiry ID"
// @Param        body           body    object  true  "New pm_review_status"
// @Success      200  {object}  models.MessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/inquiries/{id}/review-status [put]
func UpdateInquiryReviewStatus(db *sql.DB) gin.HandlerFunc {
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
		case models.InquiryPending, models.InquiryInReview, models.InquiryInDesign,
			models.InquiryProductionReady, models.InquiryInProduction, models.InquiryCompleted:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown review status: " + req.Status})
			return
		}

		result, err := db.Exec(`
			UPDATE inquiries SET pm_review_status = $1, updated_at = NOW() WHERE id = $2`,
			req.Status, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review status"})
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "inquiry_review",
			IPAddress:    session.IPAddress,
			Description:  "Moved inquiry to " + req.Status,
			EventName:    "update_review_status",
		})

		c.JSON(http.StatusOK, gin.H{"message": "Review status updated"})
	}
}
