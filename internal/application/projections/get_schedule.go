package projections

import (
	"time"

	"onda/internal/domain/schedule"
)

// GetScheduleDeps holds dependencies for GetSchedule.
type GetScheduleDeps struct {
	Program  schedule.Program
	Location *time.Location
	Now      func() time.Time
}

// GetScheduleResult carries the retreat program and the countdown to its start.
type GetScheduleResult struct {
	Program   schedule.Program   `json:"program"`
	StartsAt  time.Time          `json:"starts_at"`
	Countdown schedule.Countdown `json:"countdown"`
}

// QueryGetSchedule returns the fixed retreat program.
// PRE: Program passes Validate
// POST: Countdown is measured from Now to the first day at midnight in Location
func QueryGetSchedule(deps GetScheduleDeps) GetScheduleResult {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	start := deps.Program.Start(loc)
	return GetScheduleResult{
		Program:   deps.Program,
		StartsAt:  start,
		Countdown: schedule.CountdownTo(start, deps.Now()),
	}
}
