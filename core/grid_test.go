package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayFloor(t *testing.T) {
	noon := time.Date(2024, 3, 15, 12, 34, 56, 789, time.UTC)
	assert.Equal(t, day(2024, 3, 15), DayFloor(noon))

	// Zone offsets resolve to the UTC calendar day
	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2024, 3, 15, 23, 0, 0, 0, est) // 04:00 UTC next day
	assert.Equal(t, day(2024, 3, 16), DayFloor(late))
}

func TestBuildGridWeekly(t *testing.T) {
	bins, err := BuildGrid(day(2024, 1, 1), day(2024, 1, 10), 7)

	assert.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, 1, 1), day(2024, 1, 8)}, bins)
}

func TestBuildGridFinalBinOnBoundary(t *testing.T) {
	// A bin starting exactly on maxDate is still included
	bins, err := BuildGrid(day(2024, 1, 1), day(2024, 1, 15), 7)

	assert.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, 1, 1), day(2024, 1, 8), day(2024, 1, 15)}, bins)
}

func TestBuildGridSingleDay(t *testing.T) {
	bins, err := BuildGrid(day(2024, 6, 1), day(2024, 6, 1), 7)

	assert.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, 6, 1)}, bins)
}

func TestBuildGridDaily(t *testing.T) {
	bins, err := BuildGrid(day(2024, 1, 1), day(2024, 1, 5), 1)

	assert.NoError(t, err)
	assert.Len(t, bins, 5)
	for i, b := range bins {
		assert.Equal(t, day(2024, 1, 1+i), b)
	}
}

func TestBuildGridInvalidWidth(t *testing.T) {
	for _, width := range []int{0, -1, -7} {
		_, err := BuildGrid(day(2024, 1, 1), day(2024, 1, 10), width)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	}
}

func TestBuildGridInvalidRange(t *testing.T) {
	_, err := BuildGrid(day(2024, 1, 10), day(2024, 1, 1), 7)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestBuildGridFloorsInputs(t *testing.T) {
	// Timestamps inside the same days produce the same grid
	a, err := BuildGrid(day(2024, 1, 1), day(2024, 1, 10), 7)
	assert.NoError(t, err)

	b, err := BuildGrid(
		time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 2, 0, 0, 0, time.UTC),
		7,
	)
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}
