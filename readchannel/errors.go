// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"io"
	"strconv"

	"github.com/gcsio/readchannel/common"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ChannelError is the value type surfaced to callers, carrying a
// common.ErrorKind and the resource identity — a small value type whose
// Kind distinguishes cases, rather than a family of sentinel errors per
// case.
type ChannelError struct {
	Kind     common.ErrorKind
	Resource common.ResourceId
	msg      string
}

func (e *ChannelError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.Kind.String() + ": " + e.Resource.String()
}

func newChannelError(kind common.ErrorKind, id common.ResourceId, msg string) *ChannelError {
	return &ChannelError{Kind: kind, Resource: id, msg: msg}
}

// ErrReadOnly is returned by Write/Truncate: the channel never supports
// mutation.
var ErrReadOnly = errors.New("readchannel: channel is read-only")

// errClosed is returned by every operation but IsOpen once the channel
// has been closed. Sticky: Close never un-sets it.
func errClosed(id common.ResourceId) error {
	return newChannelError(common.KindClosed, id, "readchannel: channel closed: "+id.String())
}

func errNotFound(id common.ResourceId) error {
	return newChannelError(common.KindNotFound, id, "readchannel: not found: "+id.String())
}

func errGzipUnsupported(id common.ResourceId) error {
	return newChannelError(common.KindGzipUnsupported, id, "readchannel: gzip-encoded objects are not supported: "+id.String())
}

func errChecksumMismatch(id common.ResourceId, offset int64) error {
	return newChannelError(common.KindChecksumMismatch, id, "readchannel: crc32c mismatch at offset "+strconv.FormatInt(offset, 10)+": "+id.String())
}

// internal-only categories: never surface past translateStatus. They exist
// purely to drive stub recreation and retry.
type internalCategory int

const (
	categoryNone internalCategory = iota
	categoryTransportBroken
	categoryDeadlineExceeded
)

func classify(err error) internalCategory {
	if err == nil {
		return categoryNone
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.Aborted, codes.Internal, codes.Canceled, codes.ResourceExhausted:
		return categoryTransportBroken
	case codes.DeadlineExceeded:
		return categoryDeadlineExceeded
	default:
		return categoryNone
	}
}

// translateStatus maps a terminal (non-retryable, attempts-exhausted) RPC
// failure to the surfaced taxonomy: NOT_FOUND -> distinct not-found error,
// OUT_OF_RANGE -> io.EOF, everything else -> generic I/O error naming the
// resource.
func translateStatus(err error, id common.ResourceId) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return errNotFound(id)
	case codes.OutOfRange:
		return io.EOF
	default:
		return errors.Wrapf(err, "readchannel: %s", id)
	}
}

// isStubBrokenStatus is the default IsStubBroken policy for a StubProvider
// backed by gRPC status codes, exposed so callers can reuse it.
func isStubBrokenStatus(err error) bool {
	return classify(err) == categoryTransportBroken
}
