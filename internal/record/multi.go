package record

import (
	"context"
	"errors"
)

// Multi saves to every store in order. The first store is the primary:
// Load consults stores in order and returns the first record found.
type Multi []Store

// Save writes to all stores and joins any failures. Every store is tried
// even if an earlier one fails.
func (m Multi) Save(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load returns the first record found, or nil if none of the stores has one.
func (m Multi) Load(ctx context.Context) (*Record, error) {
	for _, s := range m {
		rec, err := s.Load(ctx)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}
