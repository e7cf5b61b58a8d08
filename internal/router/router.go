package router

import (
	"time"

	"github.com/consultdesk/consultdesk/internal/handlers"
	"github.com/consultdesk/consultdesk/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Config struct {
	// Users resolves identities for the auth middleware.
	Users middleware.UserLookup
	// DemoUsername is the identity of token-less requests. Empty disables
	// demo mode.
	DemoUsername   string
	AllowedOrigins []string
}

func NewRouter(h *handlers.Handler, cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authenticated := middleware.AuthMiddleware(cfg.Users, cfg.DemoUsername)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws", authenticated, h.WebSocket)
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.GET("/me", authenticated, h.Me)
		}

		api.GET("/dashboard/metrics", authenticated, h.DashboardMetrics)
		api.GET("/reports/summary", authenticated, h.ReportSummary)

		projects := api.Group("/projects", authenticated)
		{
			projects.GET("", h.ListProjects)
			projects.POST("", h.CreateProject)
			projects.GET("/:id", h.GetProject)
			projects.PUT("/:id", h.UpdateProject)
			projects.DELETE("/:id", h.DeleteProject)

			projects.GET("/:id/students", h.ListProjectStudents)
			projects.POST("/:id/students", h.AssignStudent)
			projects.DELETE("/:id/students/:studentId", h.RemoveProjectStudent)

			projects.GET("/:id/time-entries", h.ListProjectTimeEntries)
		}

		students := api.Group("/students", authenticated)
		{
			students.GET("", h.ListStudents)
			students.POST("", h.CreateStudent)
			students.GET("/:id", h.GetStudent)
			students.PUT("/:id", h.UpdateStudent)
			students.DELETE("/:id", h.DeleteStudent)
		}

		entries := api.Group("/time-entries", authenticated)
		{
			entries.GET("", h.ListTimeEntries)
			entries.GET("/active", h.GetActiveTimeEntry)
			entries.POST("", h.StartTimeEntry)
			entries.PUT("/:id", h.UpdateTimeEntry)
			entries.POST("/:id/stop", h.StopTimeEntry)
			entries.DELETE("/:id", h.DeleteTimeEntry)
		}

		invoices := api.Group("/invoices", authenticated)
		{
			invoices.GET("", h.ListInvoices)
			invoices.POST("", h.CreateInvoice)
			invoices.POST("/preview", h.PreviewInvoice)
			invoices.GET("/:id", h.GetInvoice)
			invoices.PUT("/:id", h.UpdateInvoice)
			invoices.DELETE("/:id", h.DeleteInvoice)
			invoices.GET("/:id/pdf", h.InvoicePDF)
		}
	}

	return r
}
