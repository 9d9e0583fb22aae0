// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"context"
	"io"
	"time"
)

// footer is a one-shot prefetch of the object's trailing bytes, served
// purely from memory on any read that crosses into the tail.
type footer struct {
	startOffset int64
	bytes       []byte
}

// covers reports whether effective (positionInStream + the deferred skip)
// falls inside the footer's range.
func (f *footer) covers(effective int64) bool {
	return f != nil && effective >= f.startOffset
}

// copyFrom copies bytes starting at objectOffset into dst, up to
// len(dst) or the end of the footer, whichever is smaller.
func (f *footer) copyFrom(objectOffset int64, dst []byte) int {
	if f == nil {
		return 0
	}
	start := objectOffset - f.startOffset
	if start < 0 || start > int64(len(f.bytes)) {
		return 0
	}
	return copy(dst, f.bytes[start:])
}

// prefetchFooter issues a one-shot streaming read from footerStart to
// end, concatenating every checksummedData.content payload. An empty
// response is tolerated: the channel simply opens with no footer. ctx is
// expected to be a cancellable context owned by the caller, torn down
// once this call returns; readTimeout bounds each individual Recv, rearmed
// on every iteration of the pump loop.
func prefetchFooter(ctx context.Context, stub Stub, req *ReadObjectRequest, footerStart int64, readTimeout time.Duration) (*footer, error) {
	stream, err := stub.ReadObject(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf []byte
	for {
		callCtx, callCancel := context.WithTimeout(ctx, readTimeout)
		resp, err := stream.Recv(callCtx)
		callCancel()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if resp == nil {
			break
		}
		buf = append(buf, resp.Data.Content...)
		if resp.Release != nil {
			resp.Release()
		}
	}

	if len(buf) == 0 {
		return nil, nil
	}
	return &footer{startOffset: footerStart, bytes: buf}, nil
}
