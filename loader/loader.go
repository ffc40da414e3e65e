// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loader feeds trace files and streams into a database.
//
// Compressed input is detected from its leading bytes: gzip and zstd
// streams are decompressed transparently.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/webtracing/wtf/db"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// DefaultChunkSize is the size of the buffers handed to a source.
const DefaultChunkSize = 64 << 10

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// An Option configures loading.
type Option func(*options)

type options struct {
	chunkSize   int
	concurrency int
	logger      *zap.Logger
}

// WithChunkSize sets the size of the buffers read from the input.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithConcurrency bounds the number of files LoadFiles reads at once.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func makeOptions(opts []Option) options {
	o := options{
		chunkSize:   DefaultChunkSize,
		concurrency: 4,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load reads a whole trace from r into a new source of d. Cancelling ctx
// disposes the source; events decoded so far stay in the database.
func Load(ctx context.Context, d *db.Database, name string, r io.Reader, opts ...Option) (*db.BinarySource, error) {
	o := makeOptions(opts)
	src := d.NewBinarySource(name)
	stop := context.AfterFunc(ctx, src.Dispose)
	defer stop()

	in, err := Decompress(r)
	if err != nil {
		src.Fail("cannot open input", err.Error())
		return src, src.Err()
	}
	defer in.Close()

	buf := make([]byte, o.chunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			src.Dispose()
			return src, err
		}
		n, rerr := in.Read(buf)
		if n > 0 {
			total += int64(n)
			if err := src.ReceiveBuffer(buf[:n]); err != nil {
				if xerrors.Is(err, db.ErrSourceDisposed) && ctx.Err() != nil {
					return src, ctx.Err()
				}
				return src, err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			src.Fail("read failed", rerr.Error())
			return src, src.Err()
		}
	}
	if err := src.End(); err != nil {
		return src, err
	}
	o.logger.Debug("trace loaded", zap.String("source", name), zap.Int64("bytes", total), zap.Int("events", src.EventCount()))
	return src, nil
}

type readCloser struct {
	io.Reader
	close func()
}

func (rc readCloser) Close() error {
	rc.close()
	return nil
}

// Decompress returns a reader over the contents of r, decompressing gzip
// and zstd streams. Other input is returned unchanged.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, xerrors.Errorf("gzip: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, xerrors.Errorf("zstd: %w", err)
		}
		return readCloser{zr, zr.Close}, nil
	}
	return readCloser{br, func() {}}, nil
}

// LoadFile loads the trace stored at path. The source is named after the
// file.
func LoadFile(ctx context.Context, d *db.Database, path string, opts ...Option) (*db.BinarySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(ctx, d, filepath.Base(path), f, opts...)
}

// LoadFiles loads several traces concurrently. A file that fails to load
// does not stop the others; the first error is returned after all files
// have been read. Sources are returned in the order of paths, with nil
// for files that could not be opened.
func LoadFiles(ctx context.Context, d *db.Database, paths []string, opts ...Option) ([]*db.BinarySource, error) {
	o := makeOptions(opts)
	srcs := make([]*db.BinarySource, len(paths))
	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			src, err := LoadFile(ctx, d, path, opts...)
			srcs[i] = src
			if err != nil {
				o.logger.Warn("trace failed to load", zap.String("path", path), zap.Error(err))
				return xerrors.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return srcs, g.Wait()
}
