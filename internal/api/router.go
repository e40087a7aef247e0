package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitlit/internal/config"
)

// NewRouter wires the JSON API over the progression engine.
func NewRouter(h *Handler, cfg config.HTTP) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Health)

	api := r.Group("/api/v1")
	{
		habits := api.Group("/habits/:id")
		{
			habits.GET("", h.GetHabit)
			habits.DELETE("", h.DeleteHabit)
			habits.POST("/archive", h.ArchiveHabit)
			habits.POST("/completions", h.RecordCompletion)
			habits.DELETE("/completions/:date", h.RemoveCompletion)
			habits.GET("/streak", h.GetStreak)
		}
		users := api.Group("/users/:user")
		{
			users.GET("/habits", h.ListHabits)
			users.POST("/habits", h.CreateHabit)
			users.GET("/profile", h.GetProfile)
			users.GET("/level", h.GetLevel)
			users.POST("/xp", h.AwardXP)
			users.GET("/badges", h.ListBadges)
			users.POST("/badges/evaluate", h.EvaluateBadges)
			users.GET("/stats", h.GetStats)
			users.GET("/stats/weekly", h.CompareWeeks)
			users.POST("/reconcile", h.Reconcile)
		}
	}

	return r
}
