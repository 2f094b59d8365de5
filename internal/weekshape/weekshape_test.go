package weekshape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komapc/year-shape/internal/geom"
	"github.com/komapc/year-shape/internal/model"
	"github.com/komapc/year-shape/internal/scene"
)

func newTestShape(t *testing.T) *Shape {
	t.Helper()
	s, err := New(800, 800, 2025, time.UTC)
	require.NoError(t, err)
	s.SetClock(func() time.Time {
		return time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	})
	return s
}

func TestNewRejectsEmptyViewport(t *testing.T) {
	_, err := New(800, 0, 2025, time.UTC)
	assert.ErrorIs(t, err, scene.ErrNoViewport)
}

func TestMarkerZeroSitsAtTop(t *testing.T) {
	s := newTestShape(t)
	at := s.MarkerPosition(0)
	assert.InDelta(t, 400, at.X, 1e-9)
	assert.InDelta(t, 36, at.Y, 1e-9, "base radius is half-min minus the margin")
}

func TestQuarterMarkerFollowsDirection(t *testing.T) {
	s := newTestShape(t)
	cw := s.MarkerPosition(13)
	assert.InDelta(t, 764, cw.X, 1e-9, "week 13 sits at the right on a clockwise circle")
	assert.InDelta(t, 400, cw.Y, 1e-9)

	s.SetShape(1, geom.CCW)
	ccw := s.MarkerPosition(13)
	assert.InDelta(t, 36, ccw.X, 1e-9, "mirrored to the left")
	assert.InDelta(t, 400, ccw.Y, 1e-9)
}

func TestRotationMovesOrigin(t *testing.T) {
	s := newTestShape(t)
	s.SetRotation(90)
	at := s.MarkerPosition(0)
	assert.InDelta(t, 764, at.X, 1e-9)
	assert.InDelta(t, 400, at.Y, 1e-9)
}

func TestMorphPreservesPerimeter(t *testing.T) {
	s := newTestShape(t)
	circle := s.adjustedRadius()
	s.SetShape(0, geom.CW)
	square := s.adjustedRadius()
	assert.Greater(t, square, circle,
		"a square of equal perimeter needs a larger circumradius")

	s.SetShape(1, geom.CW)
	assert.InDelta(t, circle, s.adjustedRadius(), 1)
}

func TestRenderRegistersAllMarkers(t *testing.T) {
	sc, err := scene.New(800, 800)
	require.NoError(t, err)

	s := newTestShape(t)
	s.Render(sc)
	assert.Equal(t, model.WeeksPerYear, sc.HitCount())

	rec, ok := sc.HitTest(400, 36)
	require.True(t, ok)
	assert.Equal(t, "week/0", rec.ID)
}

func TestEventWeeksFillDifferently(t *testing.T) {
	sc, err := scene.New(800, 800)
	require.NoError(t, err)

	s := newTestShape(t)
	s.SetEvents(model.GroupByWeek([]model.CalendarEvent{
		{Title: "trip", Start: time.Date(2025, time.November, 16, 9, 0, 0, 0, time.UTC)},
	}))
	s.Render(sc)

	root, ok := sc.Root.Children[0].(*scene.Group)
	require.True(t, ok)
	filled := 0
	for _, node := range root.Children {
		if c, ok := node.(*scene.Circle); ok && c.Fill == eventFill {
			filled++
		}
	}
	assert.Equal(t, 1, filled, "exactly one week holds the event")
}

func TestTodayArrowOnlyForDisplayedYear(t *testing.T) {
	countArrows := func(s *Shape) int {
		sc, err := scene.New(800, 800)
		require.NoError(t, err)
		s.Render(sc)
		root := sc.Root.Children[0].(*scene.Group)
		n := 0
		for _, node := range root.Children {
			if p, ok := node.(*scene.Path); ok && p.Fill == arrowFill {
				n++
			}
		}
		return n
	}

	s := newTestShape(t)
	assert.Equal(t, 1, countArrows(s))

	s.SetYear(2024)
	assert.Equal(t, 0, countArrows(s), "no arrow when today is outside the shown year")
}
