// Package render formats a completed planning for people: a JSON document,
// a spreadsheet-friendly CSV and a plain table to paste into a chat.
package render

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arnavshah/duty-roster-go/pkg/models"
)

// Mapping returns ISO date -> last names in the grid's order
func Mapping(grid *models.Grid) map[string][]string {
	return grid.Mapping()
}

// JSON writes the planning as an indented object keyed by ISO date.
// Keys come out sorted, which for ISO dates is chronological.
func JSON(w io.Writer, planning map[string][]string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(planning)
}

// CSV writes one row per day: date, weekday, then every assignee.
func CSV(w io.Writer, grid *models.Grid) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "weekday", "first_name", "last_name", "on_duty"}); err != nil {
		return err
	}
	for _, d := range grid.Days() {
		weekday := d.In(time.UTC).Weekday().String()
		assigned := grid.Get(d)
		if len(assigned) == 0 {
			if err := writer.Write([]string{d.String(), weekday, "", "", "0"}); err != nil {
				return err
			}
			continue
		}
		for _, p := range assigned {
			if err := writer.Write([]string{d.String(), weekday, p.FirstName, p.LastName, "1"}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// Table renders the planning as a bordered text table, one line per day.
func Table(grid *models.Grid) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Day", "On duty")
	for _, d := range grid.Days() {
		names := make([]string, 0, len(grid.Get(d)))
		for _, p := range grid.Get(d) {
			names = append(names, p.String())
		}
		t.Row(d.String(), d.In(time.UTC).Weekday().String()[:3], strings.Join(names, ", "))
	}
	return t.String()
}
