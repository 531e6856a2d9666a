package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/matthewbaird/lensgrid/internal/blob"
	"github.com/matthewbaird/lensgrid/internal/event"
)

// Blob check outcomes.
const (
	StatusOK      = "ok"
	StatusMissing = "missing"
	StatusInvalid = "invalid"
)

// BlobReport is the outcome of checking one stored blob.
type BlobReport struct {
	Blob   event.Blob
	Status string
	Err    error // set when Status is StatusInvalid
}

// Check validates every stored blob against the schema without loading it.
// A missing blob is not an error; Load would use its default.
func (l *Loader) Check(ctx context.Context) ([]BlobReport, error) {
	reports := make([]BlobReport, 0, len(event.Blobs))
	for _, name := range event.Blobs {
		data, err := l.store.Load(ctx, string(name))
		if errors.Is(err, blob.ErrNotFound) {
			reports = append(reports, BlobReport{Blob: name, Status: StatusMissing})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		var discard any
		if err := l.schema.decode(name, data, &discard); err != nil {
			reports = append(reports, BlobReport{Blob: name, Status: StatusInvalid, Err: err})
			continue
		}
		reports = append(reports, BlobReport{Blob: name, Status: StatusOK})
	}
	return reports, nil
}
