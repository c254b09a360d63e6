package processor

import (
	"context"
	"errors"

	"github.com/zclconf/go-cty/cty"
)

// ErrEndOfStream is the distinguished sentinel an upstream reader returns
// when it has no more records. It is control flow, never a failure.
var ErrEndOfStream = errors.New("end of pipeline stream")

// Reader is the upstream-pull capability a stage consumes. Pulling may
// recursively drive the upstream stage's own lifecycle loop; the call
// returns only when a record is available or the stream has ended.
type Reader interface {
	ReadObject(ctx context.Context) (cty.Value, error)
}

// SliceReader serves records from a fixed slice. It is the reader for the
// head stage of a pipeline and for tests.
type SliceReader struct {
	records []cty.Value
	next    int
}

// NewSliceReader builds a reader over the given records.
func NewSliceReader(records []cty.Value) *SliceReader {
	return &SliceReader{records: records}
}

// ReadObject implements Reader.
func (r *SliceReader) ReadObject(ctx context.Context) (cty.Value, error) {
	if err := ctx.Err(); err != nil {
		return cty.NilVal, err
	}
	if r.next >= len(r.records) {
		return cty.NilVal, ErrEndOfStream
	}
	rec := r.records[r.next]
	r.next++
	return rec, nil
}
