// Package datasource defines where raw CSV bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a readable stream for the loader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
