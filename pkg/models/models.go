package models

// LeaveInput is a requested leave, dates as YYYY-MM-DD
type LeaveInput struct {
	StartDate string `json:"start_date" yaml:"start_date" binding:"required"`
	EndDate   string `json:"end_date" yaml:"end_date" binding:"required"`
}

// EmployeeInput represents a team member as it arrives from configuration
type EmployeeInput struct {
	FirstName       string       `json:"first_name" yaml:"first_name" binding:"required"`
	LastName        string       `json:"last_name" yaml:"last_name" binding:"required"`
	Gender          string       `json:"gender" yaml:"gender" binding:"required"`
	Leaves          []LeaveInput `json:"leaves,omitempty" yaml:"leaves" binding:"dive"`
	MandatoryShifts []string     `json:"mandatory_shifts,omitempty" yaml:"mandatory_shifts"`
	FreeDays        []string     `json:"free_days,omitempty" yaml:"free_days"`
}

// TeamConfig is the full planning request for one month
type TeamConfig struct {
	Year      int             `json:"year" yaml:"year" binding:"required"`
	Month     int             `json:"month" yaml:"month" binding:"required,min=1,max=12"`
	Capacity  int             `json:"capacity,omitempty" yaml:"capacity"`
	Seed      *int64          `json:"seed,omitempty" yaml:"seed"`
	Employees []EmployeeInput `json:"employees" yaml:"employees" binding:"required,min=1,dive"`
}

// PlanRequest is the body of the planning endpoints. Previous, when given,
// is the prior month's output used as continuity seed.
type PlanRequest struct {
	TeamConfig
	Previous map[string][]string `json:"previous,omitempty"`
}

// PlanStats describes how a run went
type PlanStats struct {
	Steps   int `json:"steps"`
	Repairs int `json:"repairs"`
}

// PlanResponse is the data structure for the planning result
type PlanResponse struct {
	RunID    string              `json:"run_id"`
	Year     int                 `json:"year"`
	Month    int                 `json:"month"`
	Planning map[string][]string `json:"planning"`
	FreeDays map[string][]string `json:"free_days,omitempty"`
	Stats    PlanStats           `json:"stats"`
}
