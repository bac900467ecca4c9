package revision

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/treerings/pkg/errors"
)

// Format is a serialization format for revision files.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadFile loads revisions from path.
func ReadFile(path string) ([]Revision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "revisions file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Decode(bytes.NewReader(data), FormatFromPath(path))
}

// Decode parses revisions. A single JSON object is accepted as a one-revision list.
func Decode(r io.Reader, format Format) ([]Revision, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read revisions")
	}

	var revs []Revision
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &revs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML revisions")
		}
	case FormatJSON, "":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var one Revision
			if err := json.Unmarshal(trimmed, &one); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse JSON revision")
			}
			return []Revision{one}, nil
		}
		if err := json.Unmarshal(trimmed, &revs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse JSON revisions")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported revisions format %q", format)
	}
	return revs, nil
}

// Encode writes revisions in the given format.
func Encode(w io.Writer, revs []Revision, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(revs); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(revs)
	}
}

// WriteFile writes revisions to path, choosing the format from its extension.
func WriteFile(path string, revs []Revision) error {
	var buf bytes.Buffer
	if err := Encode(&buf, revs, FormatFromPath(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
