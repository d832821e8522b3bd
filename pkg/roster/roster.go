// Package roster turns configuration records into the team the scheduler
// works on, and seeds it with the tail of the previous month's planning.
package roster

import (
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"gopkg.in/yaml.v3"

	"github.com/arnavshah/duty-roster-go/pkg/models"
)

// ErrInvalidConfig wraps every configuration inconsistency.
var ErrInvalidConfig = errors.New("invalid configuration")

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: bad date %q", ErrInvalidConfig, s)
	}
	return d, nil
}

// LoadConfig reads a YAML team configuration file.
func LoadConfig(path string) (*models.TeamConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg models.TeamConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return &cfg, nil
}

// Horizon returns the empty grid for the configured month.
func Horizon(cfg *models.TeamConfig) (*models.Grid, error) {
	if cfg.Month < 1 || cfg.Month > 12 {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidConfig, cfg.Month)
	}
	if cfg.Year < 1 {
		return nil, fmt.Errorf("%w: year %d", ErrInvalidConfig, cfg.Year)
	}
	return models.NewMonthGrid(cfg.Year, time.Month(cfg.Month)), nil
}

// Build creates the team. Leaves are applied before mandatory shifts so a
// mandatory shift inside a requested leave is reported.
func Build(employees []models.EmployeeInput) ([]*models.Person, error) {
	if len(employees) == 0 {
		return nil, fmt.Errorf("%w: at least one employee is required", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(employees))
	team := make([]*models.Person, 0, len(employees))
	for _, e := range employees {
		if e.LastName == "" {
			return nil, fmt.Errorf("%w: employee %q has no last name", ErrInvalidConfig, e.FirstName)
		}
		if seen[e.LastName] {
			return nil, fmt.Errorf("%w: duplicate last name %q", ErrInvalidConfig, e.LastName)
		}
		seen[e.LastName] = true

		p, err := buildPerson(e)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, e.LastName, err)
		}
		team = append(team, p)
	}
	return team, nil
}

func buildPerson(e models.EmployeeInput) (*models.Person, error) {
	gender, err := models.ParseGender(e.Gender)
	if err != nil {
		return nil, err
	}
	p := models.NewPerson(e.FirstName, e.LastName, gender)

	for _, l := range e.Leaves {
		start, err := ParseDate(l.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := ParseDate(l.EndDate)
		if err != nil {
			return nil, err
		}
		if err := p.SetLeave(start, end); err != nil {
			return nil, err
		}
	}
	for _, s := range e.MandatoryShifts {
		d, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		if err := p.SetMandatoryShift(d); err != nil {
			return nil, err
		}
	}
	for _, s := range e.FreeDays {
		d, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		p.SetFreeDay(d)
	}
	return p, nil
}

// FreeDays reports the free-day markers of the team by last name.
func FreeDays(team []*models.Person) map[string][]string {
	out := make(map[string][]string)
	for _, p := range team {
		for _, d := range p.FreeDays() {
			out[p.LastName] = append(out[p.LastName], d.String())
		}
	}
	return out
}
