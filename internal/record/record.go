package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned by Parse for content that is not a success record.
var ErrMalformed = errors.New("malformed success record")

// Record identifies a claimed instance.
type Record struct {
	InstanceID string
	PublicIP   string
}

// Format renders the record as "<instanceID>\n<publicIP>\n".
func (r Record) Format() []byte {
	return []byte(r.InstanceID + "\n" + r.PublicIP + "\n")
}

// Parse reads a record produced by Format. A missing final newline is
// tolerated; the public IP may be empty for instances without one.
func Parse(data []byte) (Record, error) {
	parts := strings.SplitN(string(data), "\n", 3)
	if len(parts) < 2 {
		return Record{}, fmt.Errorf("%w: expected 2 lines, got %d", ErrMalformed, len(parts))
	}
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		return Record{}, fmt.Errorf("%w: unexpected trailing content", ErrMalformed)
	}
	rec := Record{
		InstanceID: strings.TrimSpace(parts[0]),
		PublicIP:   strings.TrimSpace(parts[1]),
	}
	if rec.InstanceID == "" {
		return Record{}, fmt.Errorf("%w: empty instance id", ErrMalformed)
	}
	return rec, nil
}

// Store saves and loads a record. Load returns nil, nil when no record exists.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context) (*Record, error)
}
