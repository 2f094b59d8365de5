package ics

import (
	"context"
	"time"

	applog "github.com/komapc/year-shape/internal/log"
	"github.com/komapc/year-shape/internal/model"
)

// LoadYear runs the whole pipeline for one display year: fetch every
// source (cache-backed), parse, expand recurrences over the year and
// convert to calendar events in the display timezone. Sources that
// fail are logged and skipped; the remaining feeds still load.
func (f *Fetcher) LoadYear(ctx context.Context, sources []Source, year int, loc *time.Location) ([]model.CalendarEvent, error) {
	if loc == nil {
		loc = time.UTC
	}

	results, errs := f.FetchAll(ctx, sources)
	if len(errs) > 0 {
		applog.Info("ics load: some sources failed", "failed", len(errs), "ok", len(results))
	}

	var parsed []ParsedEvent
	for _, res := range results {
		events, err := ParseICS(res.Source, res.Body)
		if err != nil {
			continue // already logged by ParseICS
		}
		parsed = append(parsed, events...)
	}

	expanded, err := ExpandOccurrences(parsed, ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
		RangeEnd:        time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc),
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.CalendarEvent, 0, len(expanded.Occurrences))
	for _, occ := range expanded.Occurrences {
		out = append(out, occ.Event())
	}

	applog.Info("ics load completed", "year", year,
		"sources", len(sources), "events", len(out))
	return out, nil
}
