// Package snapshot persists whole collections as versioned JSON blobs.
// A snapshot is written on every mutation and read once at startup; there is
// no per-record persistence.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Version is bumped when the envelope layout changes.
const Version = 1

// Known collections.
const (
	Courses   = "courses"
	Employees = "employees"
)

var (
	// ErrNotFound means no snapshot was ever written for the collection.
	ErrNotFound = errors.New("snapshot not found")
	// ErrCorrupt means a snapshot exists but cannot be decoded; callers fall
	// back to seed data and must not overwrite the broken blob silently.
	ErrCorrupt = errors.New("snapshot corrupt")
)

type (
	// envelope wraps every stored collection so older blobs can be told apart.
	envelope struct {
		Version int         `json:"version"`
		Data    interface{} `json:"data"`
	}

	// Store loads and saves one collection per call. Save replaces the whole
	// collection; partial writes never happen.
	Store interface {
		Load(ctx context.Context, collection string, dest interface{}) error
		Save(ctx context.Context, collection string, data interface{}) error
	}
)

// IsCorrupt checks if an error (or its cause) is ErrCorrupt.
func IsCorrupt(err error) bool {
	return pkgerrors.Cause(err) == ErrCorrupt
}

// encode wraps data in a versioned envelope and marshals it.
func encode(data interface{}) ([]byte, error) {
	blob, err := json.MarshalIndent(envelope{Version: Version, Data: data}, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encoding snapshot")
	}
	return blob, nil
}

// decode unmarshals a stored blob into dest, treating any decoding failure or
// version mismatch as corruption.
func decode(blob []byte, dest interface{}) error {
	var env struct {
		Version int             `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(blob, &env); err != nil {
		return pkgerrors.Wrap(ErrCorrupt, err.Error())
	}
	if env.Version != Version {
		return pkgerrors.Wrap(ErrCorrupt, fmt.Sprintf("unsupported snapshot version %d", env.Version))
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return pkgerrors.Wrap(ErrCorrupt, err.Error())
	}
	return nil
}
