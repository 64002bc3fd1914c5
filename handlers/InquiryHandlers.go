package handlers

import (
	"database/sql"
	"fmt"
	"jewelerp/models"
	"jewelerp/repository"
	"jewelerp/services"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const inquirySelect = `
	SELECT id, inquiry_id, client_name, COALESCE(client_email, ''), COALESCE(client_phone, ''),
		   COALESCE(product_category, ''), quantity, COALESCE(metal_details, ''),
		   COALESCE(polish_color, ''), COALESCE(order_type, ''), due_date,
		   COALESCE(special_instructions, ''), COALESCE(reference_image_url, ''),
		   COALESCE(sales_person_id::text, ''), pm_review_status,
		   COALESCE(cancellation_reason, ''), created_at, updated_at
	FROM inquiries`

func scanInquiry(row interface{ Scan(...interface{}) error }) (*models.Inquiry, error) {
	var inq models.Inquiry
	err := row.Scan(&inq.ID, &inq.InquiryID, &inq.ClientName, &inq.ClientEmail, &inq.ClientPhone,
		&inq.ProductCategory, &inq.Quantity, &inq.MetalDetails, &inq.PolishColor,
		&inq.OrderType, &inq.DueDate, &inq.SpecialInstructions, &inq.ReferenceImageURL,
		&inq.SalesPersonID, &inq.PMReviewStatus, &inq.CancellationReason,
		&inq.CreatedAt, &inq.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inq, nil
}

// CreateInquiry godoc
// @Summary      Create a sales inquiry
// @Description  Records a new client inquiry and queues it for production manager review. Generates the inquiry number. Notifies production managers by email and push.
// @Tags         inquiries
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string          true  "Session ID"
// @Param        inquiry        body    models.Inquiry  true  "Inquiry details"
// @Success      201  {object}  models.Inquiry
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/inquiries [post]
func CreateInquiry(db *sql.DB) gin.HandlerFunc {
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

		var inq models.Inquiry
		if err := c.ShouldBindJSON(&inq); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		inq.ClientName = strings.TrimSpace(inq.ClientName)
		if len(inq.ClientName) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Client name must be at least 2 characters"})
			return
		}
		if inq.ClientEmail != "" && !emailPattern.MatchString(inq.ClientEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client email address"})
			return
		}
		if inq.Quantity < 1 || inq.Quantity > 10000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be between 1 and 10000"})
			return
		}
		if inq.ProductCategory != "" && !models.IsValidCategory(inq.ProductCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown product category: " + inq.ProductCategory})
			return
		}

		inq.InquiryID = repository.GenerateInquiryID()
		inq.PMReviewStatus = models.InquiryPending

		query := `
			INSERT INTO inquiries
				(inquiry_id, client_name, client_email, client_phone, product_category,
				 quantity, metal_details, polish_color, order_type, due_date,
				 special_instructions, reference_image_url, sales_person_id, pm_review_status)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''),
					$6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10,
					NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, '')::uuid, $14)
			RETURNING id, created_at, updated_at`

		err = db.QueryRow(query,
			inq.InquiryID, inq.ClientName, inq.ClientEmail, inq.ClientPhone, inq.ProductCategory,
			inq.Quantity, inq.MetalDetails, inq.PolishColor, inq.OrderType, inq.DueDate,
			inq.SpecialInstructions, inq.ReferenceImageURL, inq.SalesPersonID, inq.PMReviewStatus,
		).Scan(&inq.ID, &inq.CreatedAt, &inq.UpdatedAt)
		if err != nil {
			log.Printf("Failed to insert inquiry: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inquiry"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "inquiry",
			IPAddress:    session.IPAddress,
			Description:  "Created inquiry " + inq.InquiryID + " for " + inq.ClientName,
			EventName:    "create_inquiry",
		})

		go func() {
			if err := services.NotifyNewInquiry(db, inq.InquiryID, inq.ClientName); err != nil {
				log.Printf("New inquiry notification failed: %v", err)
			}
		}()

		c.JSON(http.StatusCreated, inq)
	}
}

// GetInquiries godoc
// @Summary      List inquiries
// @Description  Returns inquiries newest first with optional review-status filter, category filter and search against inquiry number and client name.
// @Tags         inquiries
// @Produce      json
// @Param        Authorization  header  string  true   "Session ID"
// @Param        status         query   string  false  "Filter by pm_review_status"
// @Param        category       query   string  false  "Filter by product category"
// @Param        search         query   string  false  "Search by inquiry number or client name"
// @Success      200  {array}   models.Inquiry
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/inquiries [get]
func GetInquiries(db *sql.DB) gin.HandlerFunc {
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

		query := inquirySelect + ` WHERE 1=1`
		args := []interface{}{}
		argPos := 1

		if status := c.Query("status"); status != "" {
			query += fmt.Sprintf(" AND pm_review_status = $%d", argPos)
			args = append(args, status)
			argPos++
		}
		if category := c.Query("category"); category != "" {
			query += fmt.Sprintf(" AND product_category = $%d", argPos)
			args = append(args, category)
			argPos++
		}
		if search := c.Query("search"); search != "" {
			query += fmt.Sprintf(" AND (inquiry_id ILIKE $%d OR client_name ILIKE $%d)", argPos, argPos)
			args = append(args, "%"+search+"%")
			argPos++
		}
		query += " ORDER BY created_at DESC"

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inquiries"})
			return
		}
		defer rows.Close()

		inquiries := []models.Inquiry{}
		for rows.Next() {
			inq, err := scanInquiry(rows)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan inquiry"})
				return
			}
			inquiries = append(inquiries, *inq)
		}

		c.JSON(http.StatusOK, inquiries)
	}
}

// GetInquiryByID godoc
// @Summary      Get an inquiry
// @Tags         inquiries
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    string  true  "Inquiry ID"
// @Success      200  {object}  models.Inquiry
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/inquiries/{id} [get]
func GetInquiryByID(db *sql.DB) gin.HandlerFunc {
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

		inq, err := scanInquiry(db.QueryRow(inquirySelect+` WHERE id = $1`, c.Param("id")))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inquiry"})
			return
		}

		c.JSON(http.StatusOK, inq)
	}
}
