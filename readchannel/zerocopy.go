// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

// claimedBuffer is a response's content together with whatever it takes to
// give the backing buffer back to the transport. The channel must release
// every claimed buffer on: the response being fully consumed and not
// carried over, stream cancellation, or channel close — except a
// carried-over chunk, which retains its claim for the carry-over's
// lifetime (exactly one owner at a time, no weak references).
type claimedBuffer struct {
	content []byte
	release func()
}

// claim takes ownership of resp's backing buffer when zero-copy mode is
// enabled and the transport exposed a release hook; otherwise it returns a
// claim whose release is a no-op, since the decoder already produced a
// private copy.
func claim(resp *ReadObjectResponse, zeroCopyEnabled bool) claimedBuffer {
	if !zeroCopyEnabled || resp.Release == nil {
		return claimedBuffer{content: resp.Data.Content}
	}
	return claimedBuffer{content: resp.Data.Content, release: resp.Release}
}

// drop releases the claim. Safe to call more than once.
func (c *claimedBuffer) drop() {
	if c.release == nil {
		return
	}
	r := c.release
	c.release = nil
	r()
}
