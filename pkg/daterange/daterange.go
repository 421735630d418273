// Package daterange models the closed stay interval used by bookings.
//
// Both ends are inclusive: a stay ending on day D and another starting on D
// share that day and therefore overlap.
package daterange

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

var ErrInvalidRange = errors.New("end date must be after start date")

type DateRange struct {
	Start time.Time `json:"start_date" bson:"start_date"`
	End   time.Time `json:"end_date" bson:"end_date"`
}

func New(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidRange)
	}
	if !end.After(start) {
		return DateRange{}, fmt.Errorf("%w: %s is not after %s",
			ErrInvalidRange,
			end.Format(time.DateOnly),
			start.Format(time.DateOnly),
		)
	}
	return DateRange{Start: start, End: end}, nil
}

// Overlaps reports whether r and other share at least one instant.
func (r DateRange) Overlaps(other DateRange) bool {
	return !(r.End.Before(other.Start) || other.End.Before(r.Start))
}

// Contains reports whether r fully encloses other.
func (r DateRange) Contains(other DateRange) bool {
	return !r.Start.After(other.Start) && !r.End.Before(other.End)
}

func (r DateRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Nights rounds partial days up, so a 25 hour stay is billed as two nights.
func (r DateRange) Nights() int {
	return int(math.Ceil(float64(r.Duration()) / float64(day)))
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
