// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"context"

	"github.com/gcsio/readchannel/common"
)

// This file pins down the wire contract the core consumes: the RPC stub
// factory and transport pool are external collaborators. A caller wires
// MetadataClient and StubProvider against a real GCS gRPC client
// (google.golang.org/grpc + the GCS Storage v2 API); the core never
// constructs a transport itself.

// MetadataClient resolves the (bucket, object[, generation]) triple to a
// concrete ObjectInfo. The core does not implement it; common.GCSMetadataClient,
// used by cmd/gcscat, is one implementation backed by
// cloud.google.com/go/storage.
type MetadataClient interface {
	GetObjectMetadata(ctx context.Context, id common.ResourceId) (common.ObjectInfo, error)
}

// ByteRange is half-open: [Start, Limit). A Limit < 0 means "to the end of
// the object".
type ByteRange struct {
	Start int64
	Limit int64
}

// ReadObjectRequest mirrors the GCS gRPC ReadObject request fields the core
// needs: a generation-pinned object and an optional bounded range.
type ReadObjectRequest struct {
	Bucket     string
	Object     string
	Generation int64
	Range      ByteRange
}

// ChecksummedData mirrors one ReadObjectResponse's checksummed_data field.
type ChecksummedData struct {
	Content    []byte
	HasCRC32C  bool
	CRC32C     uint32
}

// ReadObjectResponse mirrors one message in the ReadObject response stream.
// Release, when non-nil, gives back ownership of Data.Content's backing
// buffer to the transport; it is only present when the transport supports
// zero-copy delivery. Callers that never claim ownership
// (grpcReadZeroCopyEnabled == false) can ignore it: the decoder already
// owns a private copy in that mode.
type ReadObjectResponse struct {
	Data    ChecksummedData
	Release func()
}

// Stream is a lazy, finite, non-restartable sequence of response messages.
// It exposes only the next() half (Recv); it has no cancel method, the
// cancellation handle being the channel-owned one in activeStream.
//
// ctx scopes only the individual Recv call's per-RPC deadline
// (grpcReadTimeoutMillis); it is not how the stream as a whole is torn
// down — that is the channel's separately-held cancel func's job (see
// Stub.ReadObject).
type Stream interface {
	// Recv returns the next message, or (nil, io.EOF) when the stream is
	// exhausted, or (nil, err) on failure.
	Recv(ctx context.Context) (*ReadObjectResponse, error)
}

// Stub is the bidirectional-capable streaming RPC client surface the core
// needs: opening a ranged ReadObject stream. ctx scopes the deadline for
// establishing the stream; tearing the stream down later is the
// responsibility of the context.CancelFunc the channel derives and keeps
// alongside the returned Stream, not of ctx's own cancellation.
type Stub interface {
	ReadObject(ctx context.Context, req *ReadObjectRequest) (Stream, error)
}

// StubProvider is the external stub provider: it creates stubs, classifies
// broken-transport failures, and evicts the underlying transport from its
// pool so a fresh stub can be created.
type StubProvider interface {
	NewStub() (Stub, error)
	IsStubBroken(err error) bool
	EvictStub(s Stub)
}
