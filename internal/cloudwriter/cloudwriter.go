package cloudwriter

import (
	"context"
	"io"
)

// CloudWriter buffers an object and uploads it on Close.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(ctx context.Context, bucket, objectPath string) (CloudWriter, error)
}

// ObjectOpener reads whole objects back, used for cloud hosted datasets.
type ObjectOpener interface {
	Open(ctx context.Context, bucket, objectPath string) (io.ReadCloser, error)
}
