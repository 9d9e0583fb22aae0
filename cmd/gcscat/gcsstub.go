// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package main

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/gcsio/readchannel/readchannel"
)

// gcsStubProvider mints gcsStub values bound to a *storage.Client returned
// by storage.NewGRPCClient (see runCat in root.go), so the range reads it
// issues ride the same gRPC transport the read channel is specified
// against.
type gcsStubProvider struct {
	client *storage.Client
}

func (p *gcsStubProvider) NewStub() (readchannel.Stub, error) {
	return &gcsStub{client: p.client}, nil
}

// IsStubBroken defers to the transport-level classification already wired
// in readchannel.NewDefaultStubProvider's sibling helper: any gRPC status
// the storage client surfaces through the reader is handled the same way.
func (p *gcsStubProvider) IsStubBroken(err error) bool {
	return readchannel.NewDefaultStubProvider(p.NewStub).IsStubBroken(err)
}

func (p *gcsStubProvider) EvictStub(readchannel.Stub) {}

type gcsStub struct {
	client *storage.Client
}

func (s *gcsStub) ReadObject(ctx context.Context, req *readchannel.ReadObjectRequest) (readchannel.Stream, error) {
	obj := s.client.Bucket(req.Bucket).Object(req.Object)
	if req.Generation != 0 {
		obj = obj.Generation(req.Generation)
	}

	length := int64(-1)
	if req.Range.Limit >= 0 {
		length = req.Range.Limit - req.Range.Start
	}

	r, err := obj.NewRangeReader(ctx, req.Range.Start, length)
	if err != nil {
		return nil, err
	}
	return &gcsStream{r: r}, nil
}

// gcsStream adapts an io.ReadCloser into the readchannel.Stream contract,
// turning each Read into one ChecksummedData message of at most
// gcsStreamChunkSize bytes. The storage
// client already validates the object-level CRC32C against what the server
// sent; per-message checksums are not exposed at this layer, so
// HasCRC32C stays false and the channel's own per-chunk check is skipped
// for this transport.
type gcsStream struct {
	r    *storage.Reader
	done bool
}

const gcsStreamChunkSize = 4 << 20

func (s *gcsStream) Recv(ctx context.Context) (*readchannel.ReadObjectResponse, error) {
	if s.done {
		return nil, io.EOF
	}

	buf := make([]byte, gcsStreamChunkSize)
	n, err := s.r.Read(buf)
	if n > 0 {
		resp := &readchannel.ReadObjectResponse{
			Data: readchannel.ChecksummedData{Content: buf[:n]},
		}
		if err == io.EOF {
			s.done = true
			_ = s.r.Close()
		}
		return resp, nil
	}

	s.done = true
	_ = s.r.Close()
	if err == io.EOF {
		return nil, io.EOF
	}
	return nil, err
}
