package handlers

import (
	"database/sql"
	"jewelerp/models"
	"jewelerp/storage"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// GetStagesByCategory godoc
// @Summary      Get stage catalog for a product category
// @Description  Returns the configured production stages for a category, ordered by stage_order. A category with no configured stages returns an empty list.
// @Tags         stages
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        category       path    string  true  "Product category"  Enums(kundan, diamond, gold, silver, platinum, custom)
// @Success      200  {array}   models.StageDefinition
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/categories/{category}/stages [get]
func GetStagesByCategory(db *sql.DB) gin.HandlerFunc {
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

		category := c.Param("category")
		if !models.IsValidCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown product category: " + category})
			return
		}

		stages, err := storage.ListStagesByCategory(db, category)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage catalog"})
			return
		}

		c.JSON(http.StatusOK, stages)
	}
}

// CreateStage godoc
// @Summary      Create a stage definition
// @Description  Adds a production stage to a category's catalog. Admin only. Duplicate stage_order or stage_name within a category is rejected.
// @Tags         stages
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                  true  "Session ID"
// @Param        stage          body    models.StageDefinition  true  "Stage definition"
// @Success      201  {object}  models.StageDefinition
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/stages [post]
func CreateStage(db *sql.DB) gin.HandlerFunc {
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
		if err != nil || user.RoleName != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can modify the stage catalog"})
			return
		}

		var stage models.StageDefinition
		if err := c.ShouldBindJSON(&stage); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		stage.StageName = strings.TrimSpace(stage.StageName)
		stage.Department = strings.TrimSpace(stage.Department)
		if stage.StageName == "" || stage.Department == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stage_name and department are required"})
			return
		}
		if !models.IsValidCategory(stage.ProductCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown product category: " + stage.ProductCategory})
			return
		}
		if stage.StageOrder < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stage_order must be at least 1"})
			return
		}

		exists, err := storage.StageExistsInCategory(db, stage.ProductCategory, stage.StageName, stage.StageOrder)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check stage catalog"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "A stage with this name or order already exists for the category"})
			return
		}

		if err := storage.CreateStage(db, &stage); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stage"})
			return
		}

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "stage_catalog",
			IPAddress:    session.IPAddress,
			Description:  "Added stage " + stage.StageName + " to " + stage.ProductCategory + " catalog",
			EventName:    "create_stage",
		})

		c.JSON(http.StatusCreated, stage)
	}
}
