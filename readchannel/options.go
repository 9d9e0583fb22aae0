// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package readchannel

import (
	"time"

	"github.com/gcsio/readchannel/common"
)

// Options is the channel's configuration surface. It is a plain struct
// with a defaults constructor — a small, purpose-built config struct over
// a generic flag/env framework, for a fixed, small enumeration like this
// one.
type Options struct {
	Fadvise                 Fadvise
	MinRangeRequestSize     int64
	InplaceSeekLimit        int64
	GRPCReadTimeout         time.Duration
	GRPCChecksumsEnabled    bool
	GRPCReadZeroCopyEnabled bool

	Retry  common.RetryConfig
	Logger common.ILogger
}

// DefaultOptions mirrors commonly used GCS connector defaults: an 8 MiB
// minimum range request, a 2 MiB in-place seek limit, and a 20s per-RPC
// deadline.
func DefaultOptions() Options {
	return Options{
		Fadvise:                 EFadvise.Auto(),
		MinRangeRequestSize:     8 << 20,
		InplaceSeekLimit:        2 << 20,
		GRPCReadTimeout:         20 * time.Second,
		GRPCChecksumsEnabled:    true,
		GRPCReadZeroCopyEnabled: true,
		Retry:                   common.DefaultRetryConfig(),
		Logger:                  common.NullLogger{},
	}
}

func (o Options) logger() common.ILogger {
	if o.Logger == nil {
		return common.NullLogger{}
	}
	return o.Logger
}
