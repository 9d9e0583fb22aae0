// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package readchannel implements a generation-pinned, seekable, streaming
// read channel over a GCS-style object storage gRPC ReadObject API. A
// single Channel is not safe for concurrent use: callers serialize their
// own access, matching the single-threaded cooperative scheduling model
// the whole package is built around.
package readchannel

import (
	"context"
	"hash/crc32"
	"io"
	"strings"
	"time"

	"github.com/gcsio/readchannel/common"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// activeStream is the in-flight ranged read: an iterator, a separate
// cancellation handle, and the range's end offset (-1 for unbounded).
type activeStream struct {
	stream Stream
	cancel context.CancelFunc
	end    int64 // -1 == unbounded
}

func (a *activeStream) bounded() bool { return a != nil && a.end >= 0 }

// Channel is the seekable-byte-channel front door, orchestrating the stub
// handle, footer cache, carry-over buffer, and read strategy. Not safe
// for concurrent use.
type Channel struct {
	id   common.ResourceId
	info common.ObjectInfo
	opts Options

	metadata MetadataClient
	stubs    *stubHandle

	isOpen           bool
	positionInStream int64
	bytesToSkip      int64
	carry            *carryOver
	active           *activeStream
	footer           *footer
	strategy         Fadvise
}

// Open resolves id's metadata, rejects gzip-encoded objects, prefetches
// the footer, and returns a Channel pinned to the resolved generation.
// The whole sequence is retried end-to-end under the backoff policy to
// survive transient failures in any step.
func Open(ctx context.Context, id common.ResourceId, metadata MetadataClient, stubs StubProvider, opts Options) (*Channel, error) {
	ch, err := common.Retry(ctx, opts.Retry, shouldRetryOpen, opts.logger(), "open", func(ctx context.Context) (*Channel, error) {
		return openOnce(ctx, id, metadata, stubs, opts)
	})
	if err != nil {
		if _, ok := err.(*ChannelError); ok {
			return nil, err
		}
		return nil, translateStatus(err, id)
	}
	return ch, nil
}

func shouldRetryOpen(err error, _ int) bool {
	_, terminal := err.(*ChannelError)
	return !terminal
}

func shouldRetryMetadata(err error, _ int) bool {
	return classify(err) != categoryNone
}

func openOnce(ctx context.Context, id common.ResourceId, metadata MetadataClient, stubs StubProvider, opts Options) (*Channel, error) {
	info, err := common.Retry(ctx, opts.Retry, shouldRetryMetadata, opts.logger(), "metadata", func(ctx context.Context) (common.ObjectInfo, error) {
		info, err := metadata.GetObjectMetadata(ctx, id)
		if err != nil {
			return common.ObjectInfo{}, err
		}
		return info, nil
	})
	if err != nil {
		if _, ok := err.(*ChannelError); ok {
			return nil, err
		}
		return nil, translateStatus(err, id)
	}

	if strings.Contains(strings.ToLower(info.ContentEncoding), "gzip") {
		return nil, errGzipUnsupported(id)
	}

	ch := &Channel{
		id:       id,
		info:     info,
		opts:     opts,
		metadata: metadata,
		stubs:    newStubHandle(stubs),
		isOpen:   true,
		strategy: opts.Fadvise,
	}

	prefetchSize := opts.MinRangeRequestSize / 2
	footerStart := int64(info.Size) - prefetchSize
	if footerStart < 0 {
		footerStart = 0
	}
	if footerStart < int64(info.Size) {
		fctx, cancel := context.WithCancel(ctx)
		f, err := prefetchFooter(fctx, &retryingStub{handle: ch.stubs}, &ReadObjectRequest{
			Bucket:     id.Bucket,
			Object:     id.Object,
			Generation: info.Generation,
			Range:      ByteRange{Start: footerStart, Limit: -1},
		}, footerStart, opts.GRPCReadTimeout)
		cancel()
		if err != nil {
			return nil, err
		}
		ch.footer = f
	}

	return ch, nil
}

// retryingStub adapts a *stubHandle into a Stub, reporting broken-transport
// failures back to the handle so it evicts and recreates on the next
// attempt. It makes a single call itself; retrying comes from Open, which
// re-runs the whole open sequence under the backoff policy.
type retryingStub struct {
	handle *stubHandle
}

func (r *retryingStub) ReadObject(ctx context.Context, req *ReadObjectRequest) (Stream, error) {
	stub, err := r.handle.get()
	if err != nil {
		return nil, err
	}
	s, err := stub.ReadObject(ctx, req)
	if err != nil {
		r.handle.reportFailure(err)
		return nil, err
	}
	return s, nil
}

// IsOpen reports whether the channel has not yet been closed. The only
// method that still succeeds after Close.
func (c *Channel) IsOpen() bool { return c.isOpen }

// Size returns the pinned object's size.
func (c *Channel) Size() int64 { return int64(c.info.Size) }

// Position returns the logical offset: positionInStream plus any deferred
// in-place skip.
func (c *Channel) Position() int64 {
	return c.positionInStream + c.bytesToSkip
}

// Write always fails: the channel is read-only.
func (c *Channel) Write([]byte) (int, error) { return 0, ErrReadOnly }

// Truncate always fails: the channel is read-only.
func (c *Channel) Truncate(int64) error { return ErrReadOnly }

// Close is idempotent: it releases the carry-over, cancels any active
// stream, and flips open to false.
func (c *Channel) Close() error {
	if !c.isOpen {
		return nil
	}
	c.invalidateCarry()
	c.cancelActive()
	c.isOpen = false
	return nil
}

func (c *Channel) cancelActive() {
	if c.active == nil {
		return
	}
	c.active.cancel()
	c.active = nil
}

func (c *Channel) invalidateCarry() {
	if c.carry == nil {
		return
	}
	c.carry.invalidate()
	c.carry = nil
}

// commitSkip folds any deferred in-place seek into positionInStream,
// turning the logical position into a concrete offset an RPC or the
// footer can act on.
func (c *Channel) commitSkip() {
	c.positionInStream += c.bytesToSkip
	c.bytesToSkip = 0
}

// Seek validates the target, no-ops on a target equal to the stream
// position (dropping any deferred skip), absorbs
// small forward distances as a deferred in-place skip, latches AUTO to
// RANDOM on a disqualifying seek, or tears down the active stream and
// jumps.
func (c *Channel) Seek(newPosition int64) error {
	if !c.isOpen {
		return errClosed(c.id)
	}
	if newPosition < 0 || newPosition >= int64(c.info.Size) {
		return newChannelError(common.KindGeneric, c.id, "readchannel: seek out of range")
	}
	if newPosition == c.positionInStream {
		c.bytesToSkip = 0
		return nil
	}

	d := newPosition - c.positionInStream
	decision := decideSeek(c.strategy, d, c.opts.InplaceSeekLimit)

	if decision.latchToRandom {
		c.strategy = EFadvise.Random()
	}

	if decision.inPlace {
		c.bytesToSkip = d
		return nil
	}

	c.cancelActive()
	c.invalidateCarry()
	c.positionInStream = newPosition
	c.bytesToSkip = 0
	return nil
}

// Read drains carry-over, checks EOF and footer coverage, pumps the
// active stream, and finally splices in any footer tail that the stream
// couldn't reach, all for a single caller-sized dest buffer.
func (c *Channel) Read(dest []byte) (int, error) {
	if !c.isOpen {
		return 0, errClosed(c.id)
	}
	if len(dest) == 0 {
		return 0, nil
	}

	want := int64(len(dest))
	written := 0

	// Phase A: range invalidation.
	logical := c.Position()
	if c.active.bounded() && logical+want > c.active.end {
		c.commitSkip()
		c.cancelActive()
		c.invalidateCarry()
	}

	// Phase B: drain carry-over.
	if c.carry != nil {
		if c.bytesToSkip > 0 {
			skipped := c.carry.drainSkip(int(c.bytesToSkip))
			c.positionInStream += int64(skipped)
			c.bytesToSkip -= int64(skipped)
		}
		n := c.carry.copyOut(dest[written:])
		written += n
		c.positionInStream += int64(n)
		if c.carry.exhausted() {
			c.invalidateCarry()
		}
	}

	// Phase C: EOF.
	if c.positionInStream == int64(c.info.Size) {
		if written == 0 {
			return 0, io.EOF
		}
		return written, nil
	}

	// Phase D: footer short-circuit.
	effective := c.Position()
	if c.footer.covers(effective) {
		c.commitSkip()
		n := c.footer.copyFrom(c.positionInStream, dest[written:])
		c.positionInStream += int64(n)
		written += n
		return written, nil
	}

	if written == len(dest) {
		return written, nil
	}

	// Phase E: ensure an active stream.
	if c.active == nil {
		if err := c.ensureActiveStream(want - int64(written)); err != nil {
			if written > 0 {
				return written, nil
			}
			return 0, err
		}
	}

	// Phase F: consume responses.
	n, err := c.consumeResponses(dest[written:])
	written += n
	if err != nil && err != io.EOF {
		return written, err
	}

	// Phase G: footer tail splice.
	if written < len(dest) && c.footer.covers(c.Position()) {
		c.commitSkip()
		n := c.footer.copyFrom(c.positionInStream, dest[written:])
		c.positionInStream += int64(n)
		written += n
	}

	if written == 0 {
		return 0, io.EOF
	}
	return written, nil
}

// ensureActiveStream opens a new ranged stream sized by the seek planner.
func (c *Channel) ensureActiveStream(want int64) error {
	footerStart := int64(-1)
	hasFooter := c.footer != nil
	if hasFooter {
		footerStart = c.footer.startOffset
	}
	plan := planRead(c.strategy, want, c.opts.InplaceSeekLimit, c.opts.MinRangeRequestSize, c.positionInStream, footerStart, hasFooter)

	c.commitSkip()

	rng := ByteRange{Start: c.positionInStream, Limit: -1}
	end := int64(-1)
	if !plan.unbounded() {
		end = c.positionInStream + plan.length
		rng.Limit = end
	}

	req := &ReadObjectRequest{
		Bucket:     c.id.Bucket,
		Object:     c.id.Object,
		Generation: c.info.Generation,
		Range:      rng,
	}

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := common.Retry(ctx, c.opts.Retry, common.RetryAll, c.opts.logger(), "stream-open", func(attemptCtx context.Context) (Stream, error) {
		callCtx, callCancel := context.WithTimeout(attemptCtx, c.opts.GRPCReadTimeout)
		defer callCancel()
		stub, err := c.stubs.get()
		if err != nil {
			return nil, err
		}
		s, err := stub.ReadObject(callCtx, req)
		if err != nil {
			c.stubs.reportFailure(err)
		}
		return s, err
	})
	if err != nil {
		cancel()
		if _, ok := err.(*ChannelError); ok {
			return err
		}
		return translateStatus(err, c.id)
	}

	c.active = &activeStream{stream: stream, cancel: cancel, end: end}
	return nil
}

// consumeResponses pulls messages from the active stream while dest still
// has room, copying bytes in and parking any surplus as carry-over. A
// broken-transport status from Recv does not propagate to the caller
// directly: the pump itself is not retried by reopening the same stream,
// but a fresh range stream picking up at the current position is —
// bounded by the same backoff policy used everywhere else.
func (c *Channel) consumeResponses(dest []byte) (int, error) {
	written := 0
	reopenAttempts := 0

	for written < len(dest) {
		if c.active == nil {
			return written, io.EOF
		}

		callCtx, callCancel := context.WithTimeout(context.Background(), c.opts.GRPCReadTimeout)
		resp, err := c.active.stream.Recv(callCtx)
		callCancel()
		if err != nil {
			if err == io.EOF {
				c.cancelActive()
				return written, io.EOF
			}
			c.stubs.reportFailure(err)
			c.cancelActive()

			if classify(err) == categoryTransportBroken && reopenAttempts < c.opts.Retry.MaxAttempts-1 {
				delay := common.BackoffDelay(c.opts.Retry, reopenAttempts)
				reopenAttempts++
				time.Sleep(delay)
				if reopenErr := c.ensureActiveStream(int64(len(dest) - written)); reopenErr != nil {
					return written, reopenErr
				}
				continue
			}
			return written, translateStatus(err, c.id)
		}
		if resp == nil {
			c.cancelActive()
			return written, io.EOF
		}

		buf := claim(resp, c.opts.GRPCReadZeroCopyEnabled)
		content := buf.content

		// Apply any remaining deferred skip against this chunk.
		if c.bytesToSkip > 0 {
			if c.bytesToSkip < int64(len(content)) {
				content = content[c.bytesToSkip:]
				c.positionInStream += c.bytesToSkip
				c.bytesToSkip = 0
			} else {
				c.positionInStream += int64(len(content))
				c.bytesToSkip -= int64(len(content))
				buf.drop()
				continue
			}
		}

		if c.opts.GRPCChecksumsEnabled && resp.Data.HasCRC32C {
			if crc32.Checksum(resp.Data.Content, crc32cTable) != resp.Data.CRC32C {
				buf.drop()
				return written, errChecksumMismatch(c.id, c.positionInStream)
			}
		}

		n := copy(dest[written:], content)
		written += n
		c.positionInStream += int64(n)

		if n < len(content) {
			remainder := claimedBuffer{content: content[n:], release: buf.release}
			c.carry = newCarryOver(remainder)
		} else {
			buf.drop()
		}

		if c.active != nil && c.active.bounded() && c.positionInStream >= c.active.end {
			c.cancelActive()
		}
	}
	return written, nil
}
