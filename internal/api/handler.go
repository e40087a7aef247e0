package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/progression"
	"github.com/julianstephens/habitlit/internal/utils"
)

// defaultStatsDays is the range length used when a stats request omits from.
const defaultStatsDays = 30

type Handler struct {
	engine *progression.Engine
}

func NewHandler(engine *progression.Engine) *Handler {
	return &Handler{engine: engine}
}

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": constants.Version})
}

type createHabitReq struct {
	Title  string  `json:"title" binding:"required"`
	Icon   string  `json:"icon"`
	Target float64 `json:"target"`
	Unit   string  `json:"unit"`
}

// POST /api/v1/users/:user/habits
func (h *Handler) CreateHabit(c *gin.Context) {
	var req createHabitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	habit, err := h.engine.CreateHabit(c, progression.HabitInput{
		UserID: c.Param("user"),
		Title:  req.Title,
		Icon:   req.Icon,
		Target: req.Target,
		Unit:   req.Unit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, habit)
}

// GET /api/v1/users/:user/habits?archived=true
func (h *Handler) ListHabits(c *gin.Context) {
	archived, _ := strconv.ParseBool(c.DefaultQuery("archived", "false"))
	habits, err := h.engine.ListHabits(c, c.Param("user"), archived)
	if err != nil {
		writeError(c, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	c.JSON(http.StatusOK, habits)
}

// GET /api/v1/habits/:id
func (h *Handler) GetHabit(c *gin.Context) {
	habit, err := h.engine.GetHabit(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// POST /api/v1/habits/:id/archive
func (h *Handler) ArchiveHabit(c *gin.Context) {
	habit, err := h.engine.ArchiveHabit(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// DELETE /api/v1/habits/:id
func (h *Handler) DeleteHabit(c *gin.Context) {
	if err := h.engine.DeleteHabit(c, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type recordCompletionReq struct {
	UserID     string `json:"user_id" binding:"required"`
	Date       string `json:"date"`
	Percentage *int   `json:"percentage" binding:"required"`
}

// POST /api/v1/habits/:id/completions
func (h *Handler) RecordCompletion(c *gin.Context) {
	var req recordCompletionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Date == "" {
		today, err := h.engine.Today(c)
		if err != nil {
			writeError(c, err)
			return
		}
		req.Date = today
	}
	out, err := h.engine.RecordCompletion(c, c.Param("id"), req.UserID, req.Date, *req.Percentage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /api/v1/habits/:id/completions/:date
func (h *Handler) RemoveCompletion(c *gin.Context) {
	out, err := h.engine.RemoveCompletion(c, c.Param("id"), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/v1/habits/:id/streak
func (h *Handler) GetStreak(c *gin.Context) {
	streak, err := h.engine.GetStreak(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, streak)
}

// GET /api/v1/users/:user/profile
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.engine.GetProfile(c, c.Param("user"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GET /api/v1/users/:user/level
func (h *Handler) GetLevel(c *gin.Context) {
	level, err := h.engine.GetLevel(c, c.Param("user"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

type awardXPReq struct {
	Amount int `json:"amount" binding:"required"`
}

// POST /api/v1/users/:user/xp
func (h *Handler) AwardXP(c *gin.Context) {
	var req awardXPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	award, err := h.engine.AwardXP(c, c.Param("user"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, award)
}

// GET /api/v1/users/:user/badges
func (h *Handler) ListBadges(c *gin.Context) {
	badges, err := h.engine.ListBadges(c, c.Param("user"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, badges)
}

type evaluateBadgesReq struct {
	CurrentStreak    *int     `json:"current_streak"`
	TotalCompletions *int     `json:"total_completions"`
	Events           []string `json:"events"`
}

// POST /api/v1/users/:user/badges/evaluate
func (h *Handler) EvaluateBadges(c *gin.Context) {
	var req evaluateBadgesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	signal := progression.BadgeSignal{
		CurrentStreak:    req.CurrentStreak,
		TotalCompletions: req.TotalCompletions,
	}
	if len(req.Events) > 0 {
		signal.Events = make(map[string]bool, len(req.Events))
		for _, ev := range req.Events {
			signal.Events[ev] = true
		}
	}
	eval, err := h.engine.EvaluateBadges(c, c.Param("user"), signal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

// GET /api/v1/users/:user/stats?from=&to=&granularity=
func (h *Handler) GetStats(c *gin.Context) {
	to := c.Query("to")
	if to == "" {
		today, err := h.engine.Today(c)
		if err != nil {
			writeError(c, err)
			return
		}
		to = today
	}
	from := c.Query("from")
	if from == "" && utils.ValidateDate(to) {
		from = utils.MustAddDays(to, -(defaultStatsDays - 1))
	}
	g := models.Granularity(c.DefaultQuery("granularity", string(models.GranularityAuto)))

	stats, err := h.engine.Aggregate(c, c.Param("user"), models.DateRange{From: from, To: to}, g)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/v1/users/:user/stats/weekly
func (h *Handler) CompareWeeks(c *gin.Context) {
	cmp, err := h.engine.CompareWeeks(c, c.Param("user"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// POST /api/v1/users/:user/reconcile
func (h *Handler) Reconcile(c *gin.Context) {
	report, err := h.engine.Reconcile(c, c.Param("user"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
