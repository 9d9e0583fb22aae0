// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"errors"
	"strings"
)

// Fadvise is the caller-declared access pattern hint, following the same
// zero-value-as-default idiom as common.LogLevel.
type Fadvise uint8

const (
	FadviseSequential Fadvise = iota
	FadviseRandom
	FadviseAuto
)

var EFadvise = Fadvise(FadviseSequential)

func (Fadvise) Sequential() Fadvise { return FadviseSequential }
func (Fadvise) Random() Fadvise     { return FadviseRandom }
func (Fadvise) Auto() Fadvise       { return FadviseAuto }

func (f *Fadvise) Parse(s string) error {
	switch strings.ToUpper(s) {
	case "SEQUENTIAL":
		*f = FadviseSequential
	case "RANDOM":
		*f = FadviseRandom
	case "AUTO":
		*f = FadviseAuto
	default:
		return errors.New("readchannel: unrecognized fadvise strategy: " + s)
	}
	return nil
}

func (f Fadvise) String() string {
	switch f {
	case EFadvise.Sequential():
		return "SEQUENTIAL"
	case EFadvise.Random():
		return "RANDOM"
	case EFadvise.Auto():
		return "AUTO"
	default:
		return "UNKNOWN"
	}
}

// plannedRange is the outcome of the seek planner: a length of -1 means
// unbounded ("to end of object" / until the footer).
type plannedRange struct {
	length int64 // -1 == unbounded
}

func (p plannedRange) unbounded() bool { return p.length < 0 }

// planRead sizes the next ranged read given want bytes requested:
// SEQUENTIAL (and AUTO, until it latches to RANDOM) keeps the stream
// unbounded; RANDOM sizes a bounded range; either way, a present footer
// clamps the plan so the footer cache — not an RPC — serves the tail.
func planRead(strategy Fadvise, want int64, inplaceSeekLimit, minRangeRequestSize int64, positionInStream int64, footerStart int64, hasFooter bool) plannedRange {
	var plan plannedRange
	if strategy != EFadvise.Random() {
		plan = plannedRange{length: -1}
	} else {
		length := want
		if floor := inplaceSeekLimit; floor > length {
			length = floor
		}
		if minRangeRequestSize > length {
			length = minRangeRequestSize
		}
		plan = plannedRange{length: length}
	}

	if hasFooter && footerStart > positionInStream {
		maxLen := footerStart - positionInStream
		if plan.unbounded() || plan.length > maxLen {
			plan.length = maxLen
		}
	}
	return plan
}

// seekDecision is the outcome of evaluating the seek policy.
type seekDecision struct {
	// inPlace is true when the seek is absorbed lazily as a deferred skip,
	// without tearing down any active stream.
	inPlace bool
	// latchToRandom is true when an AUTO strategy must transition to
	// RANDOM as a result of this seek (one-way, never reverts).
	latchToRandom bool
}

// decideSeek evaluates the seek policy given the forward distance
// d = newPosition - positionInStream (d may be negative for a backward
// seek).
func decideSeek(strategy Fadvise, d int64, inplaceSeekLimit int64) seekDecision {
	inPlace := d >= 0 && d <= inplaceSeekLimit
	latch := strategy == EFadvise.Auto() && !inPlace
	return seekDecision{inPlace: inPlace, latchToRandom: latch}
}
