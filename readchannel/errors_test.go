// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"io"
	"testing"

	"github.com/gcsio/readchannel/common"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify_TransportBrokenCodes(t *testing.T) {
	for _, c := range []codes.Code{codes.Unavailable, codes.Aborted, codes.Internal, codes.Canceled, codes.ResourceExhausted} {
		assert.Equal(t, categoryTransportBroken, classify(status.Error(c, "x")), c.String())
	}
}

func TestClassify_DeadlineExceeded(t *testing.T) {
	assert.Equal(t, categoryDeadlineExceeded, classify(status.Error(codes.DeadlineExceeded, "x")))
}

func TestClassify_OtherCodesAreNone(t *testing.T) {
	assert.Equal(t, categoryNone, classify(status.Error(codes.InvalidArgument, "x")))
	assert.Equal(t, categoryNone, classify(nil))
}

func TestTranslateStatus_NotFound(t *testing.T) {
	id := common.ResourceId{Bucket: "b", Object: "o"}
	err := translateStatus(status.Error(codes.NotFound, "x"), id)
	var cerr *ChannelError
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, common.KindNotFound, cerr.Kind)
}

func TestTranslateStatus_OutOfRangeIsEOF(t *testing.T) {
	id := common.ResourceId{Bucket: "b", Object: "o"}
	err := translateStatus(status.Error(codes.OutOfRange, "x"), id)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTranslateStatus_OtherWraps(t *testing.T) {
	id := common.ResourceId{Bucket: "b", Object: "o"}
	err := translateStatus(status.Error(codes.InvalidArgument, "bad arg"), id)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad arg")
}

func TestIsStubBrokenStatus(t *testing.T) {
	assert.True(t, isStubBrokenStatus(status.Error(codes.Unavailable, "x")))
	assert.False(t, isStubBrokenStatus(status.Error(codes.NotFound, "x")))
}

func TestChannelError_ErrorMessage(t *testing.T) {
	id := common.ResourceId{Bucket: "b", Object: "o"}
	err := errNotFound(id)
	assert.Contains(t, err.Error(), "gs://b/o")
}
