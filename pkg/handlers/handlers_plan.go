package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arnavshah/duty-roster-go/pkg/database"
	"github.com/arnavshah/duty-roster-go/pkg/metrics"
	"github.com/arnavshah/duty-roster-go/pkg/models"
	"github.com/arnavshah/duty-roster-go/pkg/render"
	"github.com/arnavshah/duty-roster-go/pkg/roster"
	"github.com/arnavshah/duty-roster-go/pkg/scheduler"
)

type planRun struct {
	runID  string
	req    models.PlanRequest
	team   []*models.Person
	result *scheduler.Result
}

// plan binds the request, builds the team, seeds continuity and runs the
// scheduler. On failure it has already written the response.
func (h *Handler) plan(c *gin.Context) (*planRun, bool) {
	var req models.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Metrics.Run(metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	grid, err := roster.Horizon(&req.TeamConfig)
	if err != nil {
		h.Metrics.Run(metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	team, err := roster.Build(req.Employees)
	if err != nil {
		h.Metrics.Run(metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	apiKey := currentKey(c)
	previous := req.Previous
	if previous == nil && apiKey != nil {
		stored, err := database.PreviousPlanning(h.DB, apiKey.ID, req.Year, time.Month(req.Month))
		switch {
		case err == nil:
			previous = stored.Assignments
		case errors.Is(err, gorm.ErrRecordNotFound):
			h.Logger.Debug("no previous planning", zap.Uint("key_id", apiKey.ID))
		default:
			h.Logger.Warn("loading previous planning", zap.Error(err))
		}
	}
	if _, err := roster.SeedContinuity(team, previous); err != nil {
		h.Metrics.Run(metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	opts := []scheduler.Option{
		scheduler.WithCapacity(req.Capacity),
		scheduler.WithLogger(h.Logger),
	}
	if req.Seed != nil {
		opts = append(opts, scheduler.WithSeed(*req.Seed))
	}
	res, err := scheduler.NewScheduler(grid, team, opts...).Run()
	if err != nil {
		h.Metrics.Run(metrics.OutcomeInfeasible)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return nil, false
	}
	h.Metrics.Completed(res.Steps, res.Repairs)

	run := &planRun{runID: uuid.NewString(), req: req, team: team, result: res}
	if apiKey != nil {
		h.store(apiKey, run)
	}
	return run, true
}

func (h *Handler) store(apiKey *database.APIKey, run *planRun) {
	err := database.SavePlanning(h.DB, &database.Planning{
		RunID:       run.runID,
		KeyID:       apiKey.ID,
		Year:        run.req.Year,
		Month:       run.req.Month,
		Assignments: run.result.Grid.Mapping(),
		Steps:       run.result.Steps,
		Repairs:     run.result.Repairs,
	})
	if err != nil {
		h.Logger.Error("saving planning", zap.String("run_id", run.runID), zap.Error(err))
	}
	if err := database.RecordUsage(h.DB, apiKey.ID, run.result.Grid.Len(), len(run.team)); err != nil {
		h.Logger.Error("recording usage", zap.Uint("key_id", apiKey.ID), zap.Error(err))
	}
}

// PlanJSON plans a month and returns the planning keyed by ISO date
func (h *Handler) PlanJSON(c *gin.Context) {
	run, ok := h.plan(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.PlanResponse{
		RunID:    run.runID,
		Year:     run.req.Year,
		Month:    run.req.Month,
		Planning: render.Mapping(run.result.Grid),
		FreeDays: roster.FreeDays(run.team),
		Stats: models.PlanStats{
			Steps:   run.result.Steps,
			Repairs: run.result.Repairs,
		},
	})
}

// PlanCSV plans a month and returns it as a spreadsheet
func (h *Handler) PlanCSV(c *gin.Context) {
	run, ok := h.plan(c)
	if !ok {
		return
	}

	var out strings.Builder
	if err := render.CSV(&out, run.result.Grid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not render CSV"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": run.runID, "csv": out.String()})
}

// PlanTable plans a month and returns a text table for chat messages
func (h *Handler) PlanTable(c *gin.Context) {
	run, ok := h.plan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": run.runID, "table": render.Table(run.result.Grid)})
}

// GetPlanning returns a stored planning of the calling key
func (h *Handler) GetPlanning(c *gin.Context) {
	year, errYear := strconv.Atoi(c.Param("year"))
	month, errMonth := strconv.Atoi(c.Param("month"))
	if errYear != nil || errMonth != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year or month"})
		return
	}

	apiKey := currentKey(c)
	p, err := database.FindPlanning(h.DB, apiKey.ID, year, time.Month(month))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "planning not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load planning"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ValidateInput builds the team without planning and reports problems
func (h *Handler) ValidateInput(c *gin.Context) {
	var req models.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}

	grid, err := roster.Horizon(&req.TeamConfig)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	team, err := roster.Build(req.Employees)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	if _, err := roster.SeedContinuity(team, req.Previous); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	mandatory := 0
	for _, p := range team {
		mandatory += len(p.MandatoryShifts())
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"employee_count":  len(team),
			"day_count":       grid.Len(),
			"mandatory_count": mandatory,
		},
	})
}
