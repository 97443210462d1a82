package repository

import (
	"fmt"

	"github.com/iliyamo/space-reservation/internal/model"
)

// Spaces and presets store a TimePolicy in the same seven columns. Times of
// day are minutes after midnight; enabled_days is a comma separated list of
// lower-case weekday names.
const policyColumns = "available_start,available_end,time_unit,min_duration,max_duration,enabled,enabled_days"

// policyRow is the scan target for policyColumns.
type policyRow struct {
	start, end           int
	unit, minDur, maxDur int
	enabled              bool
	days                 string
}

func (p *policyRow) dest() []any {
	return []any{&p.start, &p.end, &p.unit, &p.minDur, &p.maxDur, &p.enabled, &p.days}
}

func (p *policyRow) policy() (model.TimePolicy, error) {
	days, err := model.ParseWeekdays(p.days)
	if err != nil {
		return model.TimePolicy{}, fmt.Errorf("stored enabled_days %q: %w", p.days, err)
	}
	return model.TimePolicy{
		AvailableStart: model.TimeOfDay(p.start),
		AvailableEnd:   model.TimeOfDay(p.end),
		TimeUnit:       p.unit,
		MinDuration:    p.minDur,
		MaxDuration:    p.maxDur,
		Enabled:        p.enabled,
		EnabledDays:    days,
	}, nil
}

// policyArgs returns p in policyColumns order.
func policyArgs(p model.TimePolicy) []any {
	return []any{int(p.AvailableStart), int(p.AvailableEnd), p.TimeUnit, p.MinDuration, p.MaxDuration, p.Enabled, p.EnabledDays.String()}
}
