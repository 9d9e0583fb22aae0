// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFadvise_StringAndParse(t *testing.T) {
	assert.Equal(t, "SEQUENTIAL", EFadvise.Sequential().String())
	assert.Equal(t, "RANDOM", EFadvise.Random().String())
	assert.Equal(t, "AUTO", EFadvise.Auto().String())

	var f Fadvise
	require.NoError(t, f.Parse("RANDOM"))
	assert.Equal(t, EFadvise.Random(), f)

	require.Error(t, (&f).Parse("NOT_A_MODE"))
}

func TestPlanRead_Sequential_Unbounded(t *testing.T) {
	plan := planRead(EFadvise.Sequential(), 100, 256, 2000, 0, -1, false)
	assert.True(t, plan.unbounded())
}

func TestPlanRead_Sequential_ClampedByFooter(t *testing.T) {
	plan := planRead(EFadvise.Sequential(), 100, 256, 2000, 8500, 9000, true)
	require.False(t, plan.unbounded())
	assert.Equal(t, int64(500), plan.length)
}

func TestPlanRead_Random_FloorsAtMinRangeRequestSize(t *testing.T) {
	plan := planRead(EFadvise.Random(), 100, 256, 2000, 0, -1, false)
	require.False(t, plan.unbounded())
	assert.Equal(t, int64(2000), plan.length)
}

func TestPlanRead_Random_WantDominatesWhenLarger(t *testing.T) {
	plan := planRead(EFadvise.Random(), 3000, 256, 2000, 5000, 9000, true)
	require.False(t, plan.unbounded())
	assert.Equal(t, int64(3000), plan.length)
}

func TestPlanRead_Random_ClampedByFooter(t *testing.T) {
	plan := planRead(EFadvise.Random(), 3000, 256, 2000, 8000, 9000, true)
	require.False(t, plan.unbounded())
	assert.Equal(t, int64(1000), plan.length)
}

func TestDecideSeek_InPlaceWithinLimit(t *testing.T) {
	d := decideSeek(EFadvise.Sequential(), 50, 256)
	assert.True(t, d.inPlace)
	assert.False(t, d.latchToRandom)
}

func TestDecideSeek_BackwardNeverInPlace(t *testing.T) {
	d := decideSeek(EFadvise.Random(), -10, 256)
	assert.False(t, d.inPlace)
}

func TestDecideSeek_AutoLatchesOnDisqualifyingSeek(t *testing.T) {
	d := decideSeek(EFadvise.Auto(), 9000, 256)
	assert.False(t, d.inPlace)
	assert.True(t, d.latchToRandom)
}

func TestDecideSeek_RandomNeverLatches(t *testing.T) {
	d := decideSeek(EFadvise.Random(), 9000, 256)
	assert.False(t, d.latchToRandom, "latch only applies starting from AUTO")
}
