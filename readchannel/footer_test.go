// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFooterStream struct {
	chunks [][]byte
	i      int
}

func (s *stubFooterStream) Recv(context.Context) (*ReadObjectResponse, error) {
	if s.i >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.i]
	s.i++
	return &ReadObjectResponse{Data: ChecksummedData{Content: c}}, nil
}

type stubFooterStub struct {
	stream Stream
	err    error
}

func (s *stubFooterStub) ReadObject(context.Context, *ReadObjectRequest) (Stream, error) {
	return s.stream, s.err
}

func TestPrefetchFooter_ConcatenatesChunks(t *testing.T) {
	stub := &stubFooterStub{stream: &stubFooterStream{chunks: [][]byte{[]byte("abc"), []byte("def")}}}
	f, err := prefetchFooter(context.Background(), stub, &ReadObjectRequest{}, 9000, time.Second)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "abcdef", string(f.bytes))
	assert.Equal(t, int64(9000), f.startOffset)
}

func TestPrefetchFooter_EmptyStreamYieldsNilFooter(t *testing.T) {
	stub := &stubFooterStub{stream: &stubFooterStream{}}
	f, err := prefetchFooter(context.Background(), stub, &ReadObjectRequest{}, 9000, time.Second)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestFooter_CoversAndCopyFrom(t *testing.T) {
	f := &footer{startOffset: 9000, bytes: []byte("0123456789")}
	assert.True(t, f.covers(9000))
	assert.True(t, f.covers(9005))
	assert.False(t, f.covers(8999))

	dst := make([]byte, 4)
	n := f.copyFrom(9002, dst)
	assert.Equal(t, 4, n)
	assert.Equal(t, "2345", string(dst))
}

func TestFooter_NilReceiverIsSafe(t *testing.T) {
	var f *footer
	assert.False(t, f.covers(100))
	assert.Equal(t, 0, f.copyFrom(100, make([]byte, 4)))
}
