package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/platform"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/schema"
)

const (
	// PrettyFile is the human-readable registry file.
	PrettyFile = "registry.json"
	// CompactFile is the minified registry file.
	CompactFile = "registry.min.json"

	dirPerm  = 0755
	filePerm = 0644
)

// ErrInvalidRegistry is returned when the assembled registry violates the
// output schema. Nothing is written in that case.
var ErrInvalidRegistry = errors.New("assembled registry violates output schema")

// FilesystemError reports a failure to create the build directory or to write
// an output file.
type FilesystemError struct {
	Op   string // "mkdir", "write" or "rename"
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// Files lists the paths written by Write.
type Files struct {
	Pretty  string
	Compact string
}

// Encode returns the indented and compact encodings of r. Both end with a
// newline and decode to the same value.
func Encode(r *registry.Registry) (pretty, compact []byte, err error) {
	compact, err = json.Marshal(r)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding registry: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, nil, fmt.Errorf("indenting registry: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), append(compact, '\n'), nil
}

// Write validates r against the output schema, then writes both files into
// dir, creating it if needed. Each file is written to a temporary file in dir
// and renamed into place.
func Write(dir string, r *registry.Registry) (Files, error) {
	pretty, compact, err := Encode(r)
	if err != nil {
		return Files{}, err
	}

	result, err := schema.Validate(schema.Registry, compact)
	if err != nil {
		return Files{}, fmt.Errorf("validating registry: %w", err)
	}
	if !result.Valid {
		return Files{}, fmt.Errorf("%w: %s", ErrInvalidRegistry, result.Summary(5))
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return Files{}, &FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}

	files := Files{
		Pretty:  filepath.Join(dir, PrettyFile),
		Compact: filepath.Join(dir, CompactFile),
	}
	if err := writeAtomic(files.Compact, compact); err != nil {
		return Files{}, err
	}
	if err := writeAtomic(files.Pretty, pretty); err != nil {
		return Files{}, err
	}
	return files, nil
}

// writeAtomic replaces path with data, mapping failures onto FilesystemError.
func writeAtomic(path string, data []byte) error {
	err := platform.WriteFileAtomic(path, data, filePerm)
	if err == nil {
		return nil
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return &FilesystemError{Op: "rename", Path: path, Err: err}
	}
	return &FilesystemError{Op: "write", Path: path, Err: err}
}
