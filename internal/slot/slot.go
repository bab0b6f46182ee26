// Package slot derives bookable appointment slots from a doctor's working
// hours and marks the ones taken by reservations or blocked intervals.
//
// Everything here is a pure function of its arguments. Dates are interpreted
// in the location carried by the date value; no timezone conversion happens.
package slot

import (
	"fmt"
	"time"
)

const (
	// ISOLayout matches the millisecond UTC form browsers produce.
	ISOLayout = "2006-01-02T15:04:05.000Z"
	// DisplayLayout is the 12-hour clock shown next to each slot.
	DisplayLayout = "03:04 PM"
)

// TimeOfDay is a wall-clock time without a date. The zero value means unset;
// midnight built with NewTimeOfDay(0, 0) is a set value.
type TimeOfDay struct {
	Hour   int
	Minute int
	set    bool
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute, set: true}
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS". Seconds are dropped.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute()), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q, use HH:MM", value)
}

// IsZero reports an unset time of day.
func (t TimeOfDay) IsZero() bool {
	return !t.set
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.minutes() < other.minutes()
}

// On combines the time of day with the calendar date of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, date.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// ScheduleConfig is a doctor's daily working window and consultation length.
type ScheduleConfig struct {
	WorkStart           TimeOfDay
	WorkEnd             TimeOfDay
	SlotDurationMinutes int
}

// Complete reports whether every field needed to generate slots is set.
func (c ScheduleConfig) Complete() bool {
	return !c.WorkStart.IsZero() && !c.WorkEnd.IsZero() && c.SlotDurationMinutes > 0
}

// Slot is a computed appointment window. It is never persisted.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Interval is a half-open span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Contains(instant time.Time) bool {
	return !instant.Before(i.Start) && instant.Before(i.End)
}

// Availability is a slot annotated for presentation.
type Availability struct {
	Start       time.Time
	ISOTime     string
	DisplayTime string
	IsBooked    bool
}

// GenerateSlots emits slot starts from workStart on date, advancing by
// durationMinutes while the start is strictly before workEnd on the same date.
// The last slot may extend past workEnd. Unset times, a non-positive duration,
// or a window where workStart is not before workEnd produce an empty result.
func GenerateSlots(workStart, workEnd TimeOfDay, durationMinutes int, date time.Time) []Slot {
	slots := []Slot{}
	if workStart.IsZero() || workEnd.IsZero() || durationMinutes <= 0 {
		return slots
	}
	if !workStart.Before(workEnd) {
		return slots
	}

	step := time.Duration(durationMinutes) * time.Minute
	end := workEnd.On(date)
	for current := workStart.On(date); current.Before(end); current = current.Add(step) {
		slots = append(slots, Slot{Start: current, End: current.Add(step)})
	}
	return slots
}

// Generate is GenerateSlots driven by a ScheduleConfig.
func Generate(cfg ScheduleConfig, date time.Time) []Slot {
	return GenerateSlots(cfg.WorkStart, cfg.WorkEnd, cfg.SlotDurationMinutes, date)
}

// AnnotateAvailability marks a slot booked when its start equals one of the
// booked instants or falls inside any blocked interval. Output order follows
// the input slots and the inputs are not modified.
func AnnotateAvailability(slots []Slot, bookedInstants []time.Time, blocked []Interval) []Availability {
	booked := make(map[int64]struct{}, len(bookedInstants))
	for _, instant := range bookedInstants {
		booked[instant.UnixNano()] = struct{}{}
	}

	result := make([]Availability, 0, len(slots))
	for _, s := range slots {
		_, isBooked := booked[s.Start.UnixNano()]
		if !isBooked {
			isBooked = insideAny(s.Start, blocked)
		}
		result = append(result, Availability{
			Start:       s.Start,
			ISOTime:     s.Start.UTC().Format(ISOLayout),
			DisplayTime: s.Start.Format(DisplayLayout),
			IsBooked:    isBooked,
		})
	}
	return result
}

// Lookup returns the annotated slot starting exactly at instant.
func Lookup(slots []Availability, instant time.Time) (Availability, bool) {
	for _, s := range slots {
		if s.Start.Equal(instant) {
			return s, true
		}
	}
	return Availability{}, false
}

func insideAny(instant time.Time, intervals []Interval) bool {
	for _, interval := range intervals {
		if interval.Contains(instant) {
			return true
		}
	}
	return false
}
