package handlers

import (
	"database/sql"
	"jewelerp/models"
	"jewelerp/storage"
	"jewelerp/utils"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// GetUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Success      200  {array}   models.User
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/users [get]
func GetUsers(db *sql.DB) gin.HandlerFunc {
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

		query := `
			SELECT u.id, u.email, u.full_name, COALESCE(u.phone_no, ''), u.role_id,
				   r.role_name, u.suspended, u.created_at, u.updated_at
			FROM users u
			JOIN roles r ON u.role_id = r.role_id
			ORDER BY u.full_name`

		rows, err := db.Query(query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
			return
		}
		defer rows.Close()

		users := []models.User{}
		for rows.Next() {
			var u models.User
			err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PhoneNo, &u.RoleID,
				&u.RoleName, &u.Suspended, &u.CreatedAt, &u.UpdatedAt)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user"})
				return
			}
			users = append(users, u)
		}

		c.JSON(http.StatusOK, users)
	}
}

// CreateUser godoc
// @Summary      Create a user
// @Description  Admin only. The password is stored bcrypt-hashed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string       true  "Session ID"
// @Param        user           body    models.User  true  "User details with plaintext password"
// @Success      201  {object}  models.User
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/users [post]
func CreateUser(db *sql.DB) gin.HandlerFunc {
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

		admin, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || admin.RoleName != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can create users"})
			return
		}

		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		user.Email = strings.TrimSpace(strings.ToLower(user.Email))
		user.FullName = strings.TrimSpace(user.FullName)
		if user.Email == "" || user.FullName == "" || user.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email, full_name and password are required"})
			return
		}

		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		query := `
			INSERT INTO users (email, password, full_name, phone_no, role_id)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5)
			RETURNING id, created_at, updated_at`
		err = db.QueryRow(query, user.Email, hashed, user.FullName, user.PhoneNo, user.RoleID).
			Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
			return
		}
		user.Password = ""

		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "users",
			IPAddress:    session.IPAddress,
			Description:  "Created user " + user.Email,
			EventName:    "create_user",
		})

		c.JSON(http.StatusCreated, user)
	}
}

// SuspendUser godoc
// @Summary      Suspend or reinstate a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        id             path    int     true  "User ID"
// @Param        body           body    object  true  "suspended flag"
// @Success      200  {object}  models.MessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/users/{id}/suspend [put]
func SuspendUser(db *sql.DB) gin.HandlerFunc {
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

		admin, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || admin.RoleName != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can suspend users"})
			return
		}

		var req struct {
			Suspended bool `json:"suspended"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		_, err = db.Exec(`UPDATE users SET suspended = $1, updated_at = NOW() WHERE id = $2`, req.Suspended, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}

		action := "Reinstated"
		if req.Suspended {
			action = "Suspended"
		}
		SaveActivityLog(db, models.ActivityLog{
			CreatedAt:    time.Now(),
			UserName:     userName,
			HostName:     session.HostName,
			EventContext: "users",
			IPAddress:    session.IPAddress,
			Description:  action + " user " + c.Param("id"),
			EventName:    "suspend_user",
		})

		c.JSON(http.StatusOK, gin.H{"message": "User updated"})
	}
}

// UpdateFCMToken godoc
// @Summary      Register a device token for push notifications
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Session ID"
// @Param        body           body    object  true  "fcm_token"
// @Success      200  {object}  models.MessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/users/fcm-token [put]
func UpdateFCMToken(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		session, _, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		var req struct {
			FCMToken string `json:"fcm_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fcm_token is required"})
			return
		}

		_, err = db.Exec(`UPDATE users SET fcm_token = $1, updated_at = NOW() WHERE id = $2`, req.FCMToken, session.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save device token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Device token registered"})
	}
}
