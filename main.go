package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "jewelerp/docs"
	"jewelerp/handlers"
	"jewelerp/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Jewel ERP API
// @version 1.0
// @description Backend for the jewellery manufacturing ERP: inquiries, production manager review, job cards, workshop stage tracking, design and dye records, exports and reports.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	db := storage.InitDB()
	defer db.Close()

	gormDB := storage.InitGormDB()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Static serving for uploaded reference images
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	router.Static("/uploads", uploadDir)

	// ==================== 1. AUTHENTICATION ====================
	router.POST("/api/login", handlers.LoginHandler(db))
	router.POST("/api/validate-session", handlers.ValidateSession(db))
	router.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	router.DELETE("/api/session/:user_id", handlers.DeleteSessionHandler(db))

	// ==================== 2. USERS ====================
	router.GET("/api/users", handlers.GetUsers(db))
	router.POST("/api/users", handlers.CreateUser(db))
	router.PUT("/api/users/:id/suspend", handlers.SuspendUser(db))
	router.PUT("/api/users/fcm-token", handlers.UpdateFCMToken(db))

	// ==================== 3. INQUIRIES ====================
	router.POST("/api/inquiries", handlers.CreateInquiry(db))
	router.GET("/api/inquiries", handlers.GetInquiries(db))
	router.GET("/api/inquiries/:id", handlers.GetInquiryByID(db))
	router.POST("/api/inquiries/:id/review", handlers.ReviewInquiry(db))
	router.PUT("/api/inquiries/:id/review-status", handlers.UpdateInquiryReviewStatus(db))
	router.GET("/api/inquiries/:id/pdf", handlers.GenerateInquiryPDF(db))

	// ==================== 4. STAGE CATALOG ====================
	router.GET("/api/categories/:category/stages", handlers.GetStagesByCategory(db))
	router.POST("/api/stages", handlers.CreateStage(db))

	// ==================== 5. JOB CARDS ====================
	router.GET("/api/jobcards", handlers.GetJobCards(db))
	router.GET("/api/jobcards/:id", handlers.GetJobCardByID(db))
	router.PUT("/api/jobcards/:id/status", handlers.UpdateJobCardStatus(db))
	router.POST("/api/jobcards/:id/push", handlers.PushToWorkshop(db))
	router.GET("/api/jobcards/:id/print", handlers.GetJobCardPrintView(db))

	// ==================== 6. STAGE TRACKING ====================
	router.GET("/api/jobcards/:id/tracking", handlers.GetJobCardTracking(db))
	router.POST("/api/jobcards/:id/stages/:stage_id/complete", handlers.CompleteStage(db))

	// ==================== 7. DESIGN & DYE ====================
	router.GET("/api/jobcards/:id/design", handlers.GetDesignDetail(db, gormDB))
	router.PUT("/api/jobcards/:id/design", handlers.UpsertDesignDetail(db, gormDB))
	router.GET("/api/dye-details", handlers.GetDyeDetails(db, gormDB))
	router.POST("/api/dye-details", handlers.CreateDyeDetail(db, gormDB))
	router.PUT("/api/dye-details/:id", handlers.UpdateDyeDetail(db, gormDB))
	router.DELETE("/api/dye-details/:id", handlers.DeleteDyeDetail(db, gormDB))

	// ==================== 8. DASHBOARD & ANALYTICS ====================
	router.GET("/api/dashboard/stats", handlers.GetDashboardStats(db))
	router.GET("/api/analytics", handlers.GetAnalytics(db))
	router.GET("/api/logs", handlers.GetActivityLogsHandler(db))

	// ==================== 9. DOCUMENTS & EXPORTS ====================
	router.GET("/api/jobcards/:id/pdf", handlers.GenerateJobCardPDF(db))
	router.GET("/api/jobcards/:id/qrcode", handlers.GetJobCardQRCode(db))
	router.GET("/api/reports/production/pdf", handlers.GenerateProductionReportPDF(db))
	router.GET("/api/exports/jobcards", handlers.ExportJobCardsExcel(db))
	router.GET("/api/exports/inquiries", handlers.ExportInquiriesCSV(db))
	router.POST("/api/upload", handlers.UploadFile(db))

	// ==================== 10. API DOCS ====================
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Scheduled jobs
	c := cron.New()
	c.AddFunc("@hourly", func() {
		if err := storage.CleanupExpiredSessions(db); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
	})
	c.AddFunc("0 2 * * *", func() {
		// Nightly sweep: close job cards whose every catalog stage has a
		// completed ledger entry but whose status was never advanced.
		res, err := db.Exec(`
			UPDATE jobcards j SET status = 'completed', updated_at = NOW()
			WHERE j.status = 'in_progress'
			  AND EXISTS (SELECT 1 FROM production_stages_config c WHERE c.product_category = j.product_category)
			  AND NOT EXISTS (
				SELECT 1 FROM production_stages_config c
				WHERE c.product_category = j.product_category
				  AND NOT EXISTS (
					SELECT 1 FROM stage_tracking t
					WHERE t.jobcard_id = j.id AND t.stage_id = c.id AND t.status = 'completed'))`)
		if err != nil {
			log.Printf("Nightly jobcard sweep failed: %v", err)
			return
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Printf("Nightly sweep closed %d job cards", n)
		}
	})
	c.Start()
	defer c.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server exited")
}
