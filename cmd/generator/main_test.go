package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan(t *testing.T) {
	start := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

	plan := buildPlan(start, 3, rand.New(rand.NewSource(42)))
	require.Len(t, plan, len(routeSeeds))

	for _, d := range plan {
		assert.GreaterOrEqual(t, len(d.Times), 3)
		assert.LessOrEqual(t, len(d.Times), 9)
		assert.Less(t, d.Bus, len(busSeeds))
		for _, dep := range d.Times {
			assert.True(t, dep.After(start))
			assert.GreaterOrEqual(t, dep.Hour(), 6)
			assert.LessOrEqual(t, dep.Hour(), 20)
		}
	}
}

func TestBuildPlanIsDeterministicForSeed(t *testing.T) {
	start := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	first := buildPlan(start, 2, rand.New(rand.NewSource(7)))
	second := buildPlan(start, 2, rand.New(rand.NewSource(7)))
	assert.Equal(t, first, second)
}
