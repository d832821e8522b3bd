package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/arnavshah/duty-roster-go/pkg/models"
)

// ContinuityDays is how many trailing days of the previous planning are replayed.
const ContinuityDays = 4

// SeedContinuity replays the last ContinuityDays of a previous planning onto
// the team so cooldowns carry over the month boundary. Unknown names are
// skipped. It returns the number of shifts replayed.
func SeedContinuity(team []*models.Person, previous map[string][]string) (int, error) {
	if len(previous) == 0 {
		return 0, nil
	}

	byName := make(map[string]*models.Person, len(team))
	for _, p := range team {
		byName[p.LastName] = p
	}

	keys := make([]string, 0, len(previous))
	for k := range previous {
		keys = append(keys, k)
	}
	// ISO dates sort chronologically
	slices.Sort(keys)
	if len(keys) > ContinuityDays {
		keys = keys[len(keys)-ContinuityDays:]
	}

	replayed := 0
	for _, k := range keys {
		day, err := ParseDate(k)
		if err != nil {
			return replayed, fmt.Errorf("previous planning: %w", err)
		}
		for _, name := range previous[k] {
			if p, ok := byName[name]; ok {
				p.RecordShift(day)
				replayed++
			}
		}
	}
	return replayed, nil
}

// PlanningFile is the file name a month's planning is written to.
func PlanningFile(year int, month time.Month) string {
	return fmt.Sprintf("planning_%d_%d.json", year, int(month))
}

// PreviousPlanningFile is PlanningFile for the month before.
func PreviousPlanningFile(dir string, year int, month time.Month) string {
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return filepath.Join(dir, PlanningFile(prev.Year(), prev.Month()))
}

// LoadPrevious reads a planning file written by a previous run.
func LoadPrevious(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var planning map[string][]string
	if err := json.Unmarshal(data, &planning); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return planning, nil
}
