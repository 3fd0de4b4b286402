package validator

import (
	"fmt"
	"sort"
	"time"

	"taxdocs/internal/domain"
)

const hoursPerDay = 24

// DeadlineStatusAt partitions the deadlines metadata entry into upcoming (on or
// after today) and overdue, comparing calendar dates in UTC. Dates that cannot be
// parsed are skipped and returned as warnings.
func DeadlineStatusAt(metadata map[string]any, now time.Time) (domain.DeadlineStatus, []string) {
	status := domain.DeadlineStatus{Upcoming: []domain.Deadline{}, Overdue: []domain.Deadline{}}

	raw := deadlineEntries(metadata["deadlines"])
	status.HasDeadlines = len(raw) > 0
	if !status.HasDeadlines {
		return status, nil
	}

	today := truncateDay(now)
	var warnings []string
	for _, name := range domain.SortedKeys(raw) {
		date, err := parseDeadline(raw[name])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("deadline %s: %v", name, err))
			continue
		}
		d := domain.Deadline{
			Name:          name,
			Date:          date.Format(defaultDateLayout),
			DaysRemaining: int(date.Sub(today).Hours() / hoursPerDay),
		}
		if date.Before(today) {
			status.Overdue = append(status.Overdue, d)
		} else {
			status.Upcoming = append(status.Upcoming, d)
		}
	}
	sortDeadlines(status.Upcoming)
	sortDeadlines(status.Overdue)
	return status, warnings
}

func deadlineEntries(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	default:
		return nil
	}
}

func parseDeadline(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return truncateDay(t), nil
	case string:
		d, err := time.Parse(defaultDateLayout, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%q is not an ISO date", t)
		}
		return d, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v", v)
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortDeadlines(ds []domain.Deadline) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Date != ds[j].Date {
			return ds[i].Date < ds[j].Date
		}
		return ds[i].Name < ds[j].Name
	})
}
