package workorder

import (
	"fmt"
	"math"
)

// EstimatedDuration computes the estimated minutes for a work order
// from the resource's setup time and throughput:
//
//	round(setupMinutes + quantity * 60 / unitsPerHour)
//
// The estimate is computed once at creation; later resource rate edits
// do not retroactively change existing work orders.
func EstimatedDuration(setupMinutes, quantity, unitsPerHour int) (int, error) {
	if unitsPerHour <= 0 {
		return 0, fmt.Errorf("workorder: units per hour must be positive, got %d: %w", unitsPerHour, ErrInvalidRate)
	}
	mins := float64(setupMinutes) + float64(quantity)*60.0/float64(unitsPerHour)
	return int(math.Round(mins)), nil
}
