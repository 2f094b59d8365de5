package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	applog "github.com/komapc/year-shape/internal/log"
	"github.com/komapc/year-shape/internal/model"
)

// maxOccurrencesPerEvent caps the expansion of one recurring event so
// a pathological RRULE cannot flood the year.
const maxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the timezone all occurrences convert into.
	// Nil means UTC.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the expansion window, inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent overrides the default cap when positive.
	MaxOccurrencesPerEvent int
}

// ExpandResult carries the concrete occurrences plus which events hit
// the expansion cap.
type ExpandResult struct {
	Occurrences []model.Occurrence
	Truncated   []string // UIDs that hit the cap
}

// ExpandOccurrences turns parsed events into concrete occurrences in
// the window: plain events pass through, RRULE events expand with
// EXDATE removal and RECURRENCE-ID overrides, all-day events span
// whole days in their own timezone.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: range end before range start")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.UTC
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = maxOccurrencesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	for uid, bases := range baseByUID {
		truncated := false
		for _, ev := range bases {
			occ, hitCap := expandEvent(ev, overridesByUID[uid], cfg)
			if hitCap {
				truncated = true
			}
			result.Occurrences = append(result.Occurrences, occ...)
		}
		if truncated {
			result.Truncated = append(result.Truncated, uid)
			applog.Error("expand truncated occurrences", errors.New("cap reached"),
				"uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	if ev.RawRRule == "" {
		return expandSingle(ev, overrides, cfg), false
	}
	return expandRecurring(ev, overrides, cfg)
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Occurrence {
	if !rangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}

	start, end := ev.Start, ev.End
	if o, ok := overrideForStart(overrides, start); ok {
		start, end, ev = o.Start, o.End, o
	}
	return []model.Occurrence{makeOccurrence(ev, start, end, cfg.DisplayLocation)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		applog.Error("expand: bad RRULE, event skipped", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Between works in the event's own location.
	starts := set.Between(
		cfg.RangeStart.In(ev.Start.Location()),
		cfg.RangeEnd.In(ev.Start.Location()),
		true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Occurrence, 0, len(starts))
	dur := ev.End.Sub(ev.Start)
	for _, occStart := range starts {
		var occEnd time.Time
		if ev.AllDay {
			occStart = time.Date(occStart.Year(), occStart.Month(), occStart.Day(),
				0, 0, 0, 0, occStart.Location())
			occEnd = occStart.Add(24 * time.Hour)
		} else {
			occEnd = occStart.Add(dur)
		}

		src := ev
		start, end := occStart, occEnd
		if o, ok := overrideForStart(overrides, occStart); ok {
			start, end, src = o.Start, o.End, o
		}
		out = append(out, makeOccurrence(src, start, end, cfg.DisplayLocation))
	}
	return out, hitCap
}

// overrideForStart matches a RECURRENCE-ID against a base instance
// start, comparing in the instance's location.
func overrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		if ov.Recurrence.In(start.Location()).Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func makeOccurrence(ev ParsedEvent, start, end time.Time, loc *time.Location) model.Occurrence {
	startLocal := start.In(loc)
	return model.Occurrence{
		SourceID:    ev.Source.ID,
		UID:         ev.UID,
		Summary:     ev.Summary,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Start:       startLocal,
		End:         end.In(loc),
		InstanceKey: startLocal.Format(time.RFC3339Nano),
	}
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.IsZero() {
		aEnd = aStart
	}
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
