package roster

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/duty-roster-go/pkg/models"
)

const sampleConfig = `
year: 2024
month: 3
capacity: 2
seed: 42
employees:
  - first_name: Ada
    last_name: Lovelace
    gender: female
    leaves:
      - start_date: "2024-03-10"
        end_date: "2024-03-12"
    mandatory_shifts: ["2024-03-20"]
    free_days: ["2024-03-25"]
  - first_name: Alan
    last_name: Turing
    gender: M
`

func TestLoadConfigAndBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2024, cfg.Year)
	assert.Equal(t, 3, cfg.Month)
	require.NotNil(t, cfg.Seed)
	assert.EqualValues(t, 42, *cfg.Seed)

	team, err := Build(cfg.Employees)
	require.NoError(t, err)
	require.Len(t, team, 2)

	ada := team[0]
	assert.Equal(t, models.GenderFemale, ada.Gender)
	assert.False(t, ada.IsAvailable(civil.Date{Year: 2024, Month: 3, Day: 11}))
	assert.True(t, ada.CheckMandatoryShift(civil.Date{Year: 2024, Month: 3, Day: 20}))
	assert.False(t, ada.IsAvailable(civil.Date{Year: 2024, Month: 3, Day: 19}))
	assert.Equal(t, map[string][]string{"Lovelace": {"2024-03-25"}}, FreeDays(team))

	assert.Equal(t, models.GenderMale, team[1].Gender)

	grid, err := Horizon(cfg)
	require.NoError(t, err)
	assert.Equal(t, 31, grid.Len())
}

func TestBuildRejectsInconsistentConfig(t *testing.T) {
	cases := map[string]models.EmployeeInput{
		"bad gender": {FirstName: "A", LastName: "A", Gender: "x"},
		"bad date": {FirstName: "A", LastName: "A", Gender: "F",
			MandatoryShifts: []string{"2024-13-01"}},
		"leave reversed": {FirstName: "A", LastName: "A", Gender: "F",
			Leaves: []models.LeaveInput{{StartDate: "2024-03-05", EndDate: "2024-03-01"}}},
		"mandatory in leave": {FirstName: "A", LastName: "A", Gender: "F",
			Leaves:          []models.LeaveInput{{StartDate: "2024-03-01", EndDate: "2024-03-05"}},
			MandatoryShifts: []string{"2024-03-03"}},
		"no last name": {FirstName: "A", Gender: "F"},
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Build([]models.EmployeeInput{e})
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Build([]models.EmployeeInput{
		{FirstName: "A", LastName: "Same", Gender: "F"},
		{FirstName: "B", LastName: "Same", Gender: "M"},
	})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Build(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Build([]models.EmployeeInput{{FirstName: "A", LastName: "A", Gender: "F",
		Leaves:          []models.LeaveInput{{StartDate: "2024-03-01", EndDate: "2024-03-05"}},
		MandatoryShifts: []string{"2024-03-03"}}})
	require.ErrorIs(t, err, models.ErrMandatoryDuringLeave)
}

func TestHorizonRejectsBadMonth(t *testing.T) {
	_, err := Horizon(&models.TeamConfig{Year: 2024, Month: 13})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSeedContinuity(t *testing.T) {
	team, err := Build([]models.EmployeeInput{
		{FirstName: "John", LastName: "Smith", Gender: "M"},
		{FirstName: "Jane", LastName: "Doe", Gender: "F"},
	})
	require.NoError(t, err)
	smith, doe := team[0], team[1]

	previous := map[string][]string{
		"2024-02-24": {"Doe"},
		"2024-02-25": {"Doe"},
		"2024-02-26": {"Nobody"},
		"2024-02-27": {},
		"2024-02-28": {},
		"2024-02-29": {"Smith"},
	}

	n, err := SeedContinuity(team, previous)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for d := 1; d <= 3; d++ {
		assert.False(t, smith.IsAvailable(civil.Date{Year: 2024, Month: 3, Day: d}), "day %d", d)
	}
	assert.True(t, smith.IsAvailable(civil.Date{Year: 2024, Month: 3, Day: 4}))
	// older than the replayed tail
	assert.True(t, doe.IsAvailable(civil.Date{Year: 2024, Month: 3, Day: 1}))
	assert.Empty(t, doe.Leaves())

	n, err = SeedContinuity(team, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = SeedContinuity(team, map[string][]string{"yesterday": {"Smith"}})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadPrevious(t *testing.T) {
	dir := t.TempDir()
	path := PreviousPlanningFile(dir, 2024, time.January)
	assert.Equal(t, filepath.Join(dir, "planning_2023_12.json"), path)

	_, err := LoadPrevious(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte(`{"2023-12-31": ["Smith"]}`), 0o600))
	prev, err := LoadPrevious(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Smith"}, prev["2023-12-31"])
}
