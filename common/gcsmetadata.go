// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package common

import (
	"context"

	"cloud.google.com/go/storage"
)

// GCSMetadataClient resolves an object's size, generation, and content
// encoding via a cloud.google.com/go/storage client (`Object.Attrs`).
// `cmd/gcscat` passes it the same gRPC-backed client (storage.NewGRPCClient)
// that serves the read channel's range reads.
type GCSMetadataClient struct {
	Client *storage.Client
}

// GetObjectMetadata fetches id's current ObjectAttrs. When id.Generation is
// zero it resolves to the live generation; otherwise it pins the read to
// exactly that generation, matching the GCS object-versioning semantics the
// read channel depends on for its generation-pinning guarantee.
func (c GCSMetadataClient) GetObjectMetadata(ctx context.Context, id ResourceId) (ObjectInfo, error) {
	obj := c.Client.Bucket(id.Bucket).Object(id.Object)
	if id.Generation != 0 {
		obj = obj.Generation(id.Generation)
	}

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{
		Size:            uint64(attrs.Size),
		Generation:      attrs.Generation,
		ContentEncoding: attrs.ContentEncoding,
	}, nil
}
