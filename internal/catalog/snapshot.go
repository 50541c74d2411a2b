package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"formula/internal/signature"
)

// snapshotSchemaVersion must be bumped whenever the encoded layout changes.
const snapshotSchemaVersion uint16 = 1

// ErrSnapshotSchema is returned when a snapshot was written by an
// incompatible version.
var ErrSnapshotSchema = errors.New("catalog snapshot schema mismatch")

// snapshotPayload is the msgpack form of a catalog.
type snapshotPayload struct {
	Schema     uint16
	Functions  []*signature.FunctionSig
	Properties []Property
}

// WriteSnapshot encodes c as msgpack.
func (c *Catalog) WriteSnapshot(w io.Writer) error {
	payload := snapshotPayload{
		Schema:     snapshotSchemaVersion,
		Functions:  c.funcs,
		Properties: c.props,
	}
	return encodePayload(w, &payload)
}

func encodePayload(w io.Writer, payload *snapshotPayload) error {
	return msgpack.NewEncoder(w).Encode(payload)
}

// ReadSnapshot decodes a catalog written by WriteSnapshot. Every signature
// is validated again, so a tampered snapshot fails like a bad table would.
func ReadSnapshot(r io.Reader) (*Catalog, error) {
	var payload snapshotPayload
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	if payload.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSnapshotSchema, payload.Schema, snapshotSchemaVersion)
	}
	var errs []error
	sigs := make([]*signature.FunctionSig, 0, len(payload.Functions))
	for _, f := range payload.Functions {
		if f == nil {
			errs = append(errs, errors.New("nil function signature"))
			continue
		}
		shape, err := signature.NewParamShape(f.Params.Head, f.Params.Repeat, f.Params.Tail)
		if err != nil {
			errs = append(errs, fmt.Errorf("function %q: %w", f.Name, err))
			continue
		}
		sig, err := signature.NewBuiltin(f.Category, f.Detail, f.Name, shape, f.Ret, f.Generics...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sigs = append(sigs, sig)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return Build(sigs, payload.Properties)
}

// WriteSnapshotFile writes the snapshot through a temp file and renames it
// into place.
func (c *Catalog) WriteSnapshotFile(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err := c.WriteSnapshot(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadSnapshotFile reads a snapshot from path.
func ReadSnapshotFile(path string) (cat *Catalog, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return ReadSnapshot(f)
}
