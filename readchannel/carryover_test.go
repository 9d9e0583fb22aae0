// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCarryOver_CopyOutPartial(t *testing.T) {
	c := newCarryOver(claimedBuffer{content: []byte("hello world")})
	dst := make([]byte, 5)
	n := c.copyOut(dst)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(dst))
	assert.Equal(t, 6, c.remaining())
	assert.False(t, c.exhausted())
}

func TestCarryOver_DrainSkipThenCopyOut(t *testing.T) {
	c := newCarryOver(claimedBuffer{content: []byte("0123456789")})
	skipped := c.drainSkip(4)
	assert.Equal(t, 4, skipped)

	dst := make([]byte, 3)
	n := c.copyOut(dst)
	assert.Equal(t, 3, n)
	assert.Equal(t, "456", string(dst))
}

func TestCarryOver_DrainSkipClampsToRemaining(t *testing.T) {
	c := newCarryOver(claimedBuffer{content: []byte("abc")})
	skipped := c.drainSkip(100)
	assert.Equal(t, 3, skipped)
	assert.True(t, c.exhausted())
}

func TestCarryOver_InvalidateReleasesBuffer(t *testing.T) {
	released := false
	c := newCarryOver(claimedBuffer{content: []byte("abc"), release: func() { released = true }})
	c.invalidate()
	assert.True(t, released)
}

func TestCarryOver_NilReceiverIsSafe(t *testing.T) {
	var c *carryOver
	assert.Equal(t, 0, c.remaining())
	assert.Equal(t, 0, c.drainSkip(5))
	assert.Equal(t, 0, c.copyOut(make([]byte, 5)))
	assert.True(t, c.exhausted())
	c.invalidate() // must not panic
}
