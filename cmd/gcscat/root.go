// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/gcsio/readchannel/common"
	"github.com/gcsio/readchannel/readchannel"
)

var (
	flagGeneration int64
	flagOffset     int64
	flagLength     int64
	flagFadvise    string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gcscat bucket object",
		Short: "Stream a byte range of a GCS object over the gRPC-backed read channel",
		Args:  cobra.ExactArgs(2),
		RunE:  runCat,
	}

	cmd.Flags().Int64Var(&flagGeneration, "generation", 0, "pin to a specific object generation (0 = latest)")
	cmd.Flags().Int64Var(&flagOffset, "offset", 0, "starting byte offset")
	cmd.Flags().Int64Var(&flagLength, "length", -1, "number of bytes to read (-1 = to end of object)")
	cmd.Flags().StringVar(&flagFadvise, "fadvise", "AUTO", "read strategy: SEQUENTIAL, RANDOM, or AUTO")

	return cmd
}

func runCat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bucket, object := args[0], args[1]

	var fadvise readchannel.Fadvise
	if err := fadvise.Parse(flagFadvise); err != nil {
		return fmt.Errorf("gcscat: %w", err)
	}

	client, err := storage.NewGRPCClient(ctx)
	if err != nil {
		return fmt.Errorf("gcscat: creating gRPC storage client: %w", err)
	}
	defer client.Close()

	id := common.ResourceId{Bucket: bucket, Object: object, Generation: flagGeneration}
	metadata := common.GCSMetadataClient{Client: client}
	stubs := &gcsStubProvider{client: client}

	opts := readchannel.DefaultOptions()
	opts.Fadvise = fadvise
	opts.Logger = common.StdLogger{MinimumLevel: common.ELogLevel.Warning()}

	ch, err := readchannel.Open(ctx, id, metadata, stubs, opts)
	if err != nil {
		return fmt.Errorf("gcscat: opening %s: %w", id, err)
	}
	defer ch.Close()

	if flagOffset > 0 {
		if err := ch.Seek(flagOffset); err != nil {
			return fmt.Errorf("gcscat: seeking to %d: %w", flagOffset, err)
		}
	}

	remaining := flagLength
	buf := make([]byte, 1<<20)
	for remaining != 0 {
		want := len(buf)
		if remaining > 0 && int64(want) > remaining {
			want = int(remaining)
		}
		n, err := ch.Read(buf[:want])
		if n > 0 {
			if _, werr := os.Stdout.Write(buf[:n]); werr != nil {
				return werr
			}
			if remaining > 0 {
				remaining -= int64(n)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("gcscat: reading: %w", err)
		}
	}

	return nil
}

func execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}
