package rings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komapc/year-shape/internal/geom"
	"github.com/komapc/year-shape/internal/scene"
)

func newTestSystem() *System {
	s := NewSystem(geom.Point{X: 400, Y: 400}, 300, 2025)
	s.SetClock(func() time.Time {
		return time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	})
	return s
}

func TestLayoutRespectsMinInnerRadius(t *testing.T) {
	s := newTestSystem()
	// Oversized width with several visible rings must be clamped.
	s.SetRingWidth(200)
	s.SetVisibility("hebrew-months", true)
	s.SetVisibility("holidays", true)

	res := s.Layout()
	require.NotEmpty(t, res.Bands)
	assert.Less(t, res.EffectiveWidth, 200.0, "width must be clamped down")
	for _, b := range res.Bands {
		assert.GreaterOrEqual(t, b.InnerR, DefaultMinInnerRadius,
			"ring %s violates the protected center", b.Ring.Name)
	}
}

func TestLayoutAllVisibilityCombinations(t *testing.T) {
	names := []string{"seasons", "months", "weeks", "hebrew-months", "holidays"}
	for mask := 0; mask < 1<<len(names); mask++ {
		s := newTestSystem()
		s.SetRingWidth(500) // force clamping everywhere
		for i, n := range names {
			s.SetVisibility(n, mask&(1<<i) != 0)
		}
		res := s.Layout()
		for _, b := range res.Bands {
			if b.InnerR < DefaultMinInnerRadius {
				t.Fatalf("mask %b: ring %s innerR %.2f < min", mask, b.Ring.Name, b.InnerR)
			}
			if b.OuterR <= b.InnerR {
				t.Fatalf("mask %b: ring %s has non-positive width", mask, b.Ring.Name)
			}
		}
	}
}

func TestTargetPerimeterCapturedOnce(t *testing.T) {
	s := newTestSystem()
	first := s.Layout()
	assert.InDelta(t, 300, first.AdjustedRadius, 1, "full circle should keep the base radius")

	s.SetCornerRoundness(0)
	morphed := s.Layout()
	// Morphing to the square must grow the radius to preserve the
	// original perimeter, not recapture a new target.
	assert.Greater(t, morphed.AdjustedRadius, first.AdjustedRadius)

	s.SetCornerRoundness(1)
	back := s.Layout()
	assert.InDelta(t, first.AdjustedRadius, back.AdjustedRadius, 1,
		"returning to a circle must restore the original radius")
}

func TestBandsOrderedOuterToInner(t *testing.T) {
	s := newTestSystem()
	res := s.Layout()
	require.GreaterOrEqual(t, len(res.Bands), 2)
	for i := 1; i < len(res.Bands); i++ {
		assert.Less(t, res.Bands[i].OuterR, res.Bands[i-1].InnerR,
			"bands must descend with a gap")
	}
	assert.Equal(t, "seasons", res.Bands[0].Ring.Name, "outermost follows order")
}

func TestReorderAndVisibility(t *testing.T) {
	s := newTestSystem()
	s.Reorder([]string{"weeks", "seasons", "bogus"})
	order := s.Order()
	require.Equal(t, "weeks", order[0])
	require.Equal(t, "seasons", order[1])
	assert.Len(t, order, 5, "known rings missing from the list keep their place")

	s.SetVisibility("months", false)
	res := s.Layout()
	for _, b := range res.Bands {
		assert.NotEqual(t, "months", b.Ring.Name)
	}
}

func TestSeasonsRingWinterSplit(t *testing.T) {
	r := Seasons(2025)
	require.Equal(t, 4, len(r.Sectors))
	winter := r.Sectors[0]
	require.Equal(t, "Winter", winter.Label)
	require.Len(t, winter.Spans, 2, "winter wraps the year boundary as two segments")
	assert.Equal(t, 365, winter.Spans[0].End)
	assert.Equal(t, 1, winter.Spans[1].Start)
	assert.NotZero(t, r.OriginOffset, "seasons ring pins winter midpoint to the top")

	for _, sec := range r.Sectors[1:] {
		assert.Len(t, sec.Spans, 1)
	}
}

func TestMonthsRingDayAccurate(t *testing.T) {
	r := Months(2024) // leap year
	require.Len(t, r.Sectors, 12)
	feb := r.Sectors[1]
	assert.Equal(t, 29, feb.Spans[0].End-feb.Spans[0].Start+1)
	dec := r.Sectors[11]
	assert.Equal(t, 366, dec.Spans[0].End)
}

func TestHolidaysRingFixedWidth(t *testing.T) {
	r := Holidays(2025)
	for _, sec := range r.Sectors {
		total := 0
		for _, sp := range sec.Spans {
			total += sp.End - sp.Start + 1
		}
		assert.Equal(t, 2*holidayWidthDays+1, total, "holiday %s width", sec.Label)
	}
}

func TestRenderRegistersSectorHits(t *testing.T) {
	sc, err := scene.New(800, 800)
	require.NoError(t, err)

	s := newTestSystem()
	res := s.Render(sc)
	require.NotEmpty(t, res.Bands)

	total := 0
	for _, b := range res.Bands {
		switch b.Ring.Kind {
		case EqualDivision:
			total += b.Ring.SectorCount
		default:
			for _, def := range b.Ring.Sectors {
				total += len(def.Spans)
			}
		}
	}
	assert.Equal(t, total, sc.HitCount())
}

func TestRotateBy90Cycles(t *testing.T) {
	s := newTestSystem()
	assert.Equal(t, 90, s.RotateBy90())
	assert.Equal(t, 180, s.RotateBy90())
	assert.Equal(t, 270, s.RotateBy90())
	assert.Equal(t, 0, s.RotateBy90())
}
