package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/career-tracker/internal/models"
)

type Handlers struct {
	Jobs     *JobHandler
	Contacts *ContactHandler
	Research *ResearchHandler
	Analysis *AnalysisHandler
}

// Routes mounts every endpoint under /api/v1.
func Routes(r *gin.Engine, h Handlers) {
	RegisterBinding()

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		// Job Routes
		api.POST("/jobs/extract", h.Jobs.ParseJob)
		api.GET("/jobs", h.Jobs.ListJobs)
		api.POST("/jobs", h.Jobs.CreateJob)
		api.GET("/jobs/tree", h.Jobs.Tree)
		api.GET("/jobs/export", h.Jobs.Export)
		api.GET("/jobs/:id", h.Jobs.GetJob)
		api.PATCH("/jobs/:id", h.Jobs.UpdateJob)
		api.DELETE("/jobs/:id", h.Jobs.DeleteJob)
		api.GET("/jobs/:id/history", h.Jobs.ListHistory)
		api.POST("/jobs/:id/history", h.Jobs.AddHistory)

		// Contact Routes
		api.GET("/contacts", h.Contacts.List)
		api.POST("/contacts", h.Contacts.Create)
		api.POST("/contacts/import", h.Contacts.Import)
		api.GET("/contacts/export", h.Contacts.Export)
		api.GET("/contacts/tree", h.Contacts.Tree)
		api.GET("/contacts/:id", h.Contacts.Get)
		api.PATCH("/contacts/:id", h.Contacts.Update)
		api.DELETE("/contacts/:id", h.Contacts.Delete)
		api.POST("/contacts/:id/jobs/:jobId", h.Contacts.LinkJob)
		api.DELETE("/contacts/:id/jobs/:jobId", h.Contacts.UnlinkJob)
		api.GET("/contacts/:id/interactions", h.Contacts.ListInteractions)
		api.POST("/contacts/:id/interactions", h.Contacts.AddInteraction)

		// Research Routes
		api.POST("/research/company", h.Research.Company)
		api.POST("/research/news", h.Research.News)
		api.PATCH("/research/company/:id/follow", h.Research.Follow)

		// Analysis Routes
		api.POST("/analysis/job-match", h.Analysis.Run(models.KindJobMatch))
		api.POST("/analysis/skills-gap", h.Analysis.Run(models.KindSkillsGap))
		api.POST("/analysis/interview-insights", h.Analysis.Run(models.KindInterviewInsights))
		api.GET("/analysis/:kind/:jobId/history", h.Analysis.History)
	}
}
