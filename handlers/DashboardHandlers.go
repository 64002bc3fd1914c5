package handlers

import (
	"database/sql"
	"jewelerp/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats godoc
// @Summary      Get inquiry funnel statistics
// @Description  Buckets inquiries by review status: pending covers pending and in_review; in_progress covers continued, in_design, production_ready and in_production.
// @Tags         dashboard
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Success      200  {object}  models.DashboardStats
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/dashboard/stats [get]
func GetDashboardStats(db *sql.DB) gin.HandlerFunc {
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

		var stats models.DashboardStats
		query := `
			SELECT
				COUNT(*),
				COUNT(*) FILTER (WHERE pm_review_status IN ('pending', 'in_review')),
				COUNT(*) FILTER (WHERE pm_review_status IN ('continued', 'in_design', 'production_ready', 'in_production')),
				COUNT(*) FILTER (WHERE pm_review_status = 'completed'),
				COUNT(*) FILTER (WHERE pm_review_status = 'cancelled')
			FROM inquiries`

		err := db.QueryRow(query).Scan(&stats.Total, &stats.Pending, &stats.InProgress, &stats.Completed, &stats.Cancelled)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard stats"})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
