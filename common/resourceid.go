// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package common

import "fmt"

// ResourceId identifies one GCS object, optionally pinned to a generation,
// the same (bucket, object, generation) triple GCP-hosted resources carry
// end to end.
type ResourceId struct {
	Bucket     string
	Object     string
	Generation int64 // 0 means "resolve the latest generation at open time"
}

func (r ResourceId) String() string {
	if r.Generation != 0 {
		return fmt.Sprintf("gs://%s/%s#%d", r.Bucket, r.Object, r.Generation)
	}
	return fmt.Sprintf("gs://%s/%s", r.Bucket, r.Object)
}

// ObjectInfo is the metadata captured once at open and fixed for the
// channel's lifetime, mirroring the fields the metadata probe is allowed to
// request: size, generation, and content encoding (to reject gzip).
type ObjectInfo struct {
	Size            uint64
	Generation      int64
	ContentEncoding string
}
