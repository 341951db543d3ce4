package api

import (
	"go-agg-engine/internal/api/handler"
	"go-agg-engine/pkg/router"
)

func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/jobs", handler.CreateJob)
	r.GET("/api/v1/jobs", handler.ListJobs)
	// More specific routes first
	r.GET("/api/v1/jobs/*/errors", handler.GetJobErrors)
	r.GET("/api/v1/jobs/*/results", handler.GetJobResults)
	r.GET("/api/v1/jobs/*/phases", handler.GetJobPhases)
	r.GET("/api/v1/jobs/*/files", handler.GetJobFiles)
	r.PATCH("/api/v1/jobs/*/cancel", handler.CancelJob)
	// Generic job routes last
	r.GET("/api/v1/jobs/*", handler.GetJob)
	r.DELETE("/api/v1/jobs/*", handler.DeleteJob)
	r.GET("/api/v1/download/*", handler.DownloadFile)
}
