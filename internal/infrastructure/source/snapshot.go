// Package source reads registry snapshot files. Downloading and structural
// validation of the snapshot happen upstream; this adapter only decodes.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"TrialsLoader/internal/domain"
	"TrialsLoader/internal/ports"
)

// SnapshotSource streams raw studies out of a JSON snapshot file. Both the
// bare-array form and the {"studies": [...]} envelope the registry exports
// are accepted.
type SnapshotSource struct {
	path   string
	logger *slog.Logger
}

var _ ports.StudySource = (*SnapshotSource)(nil)

// NewSnapshotSource points the source at a snapshot file path.
func NewSnapshotSource(path string, logger *slog.Logger) *SnapshotSource {
	return &SnapshotSource{path: path, logger: logger}
}

// LoadSnapshot decodes the whole snapshot. Records are decoded one at a
// time so a multi-gigabyte export is never buffered twice.
func (s *SnapshotSource) LoadSnapshot(ctx context.Context) ([]domain.RawStudy, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", s.path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)

	if err := seekStudiesArray(dec); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.path, err)
	}

	var studies []domain.RawStudy
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var study domain.RawStudy
		if err := dec.Decode(&study); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(studies), err)
		}
		studies = append(studies, study)
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("close array: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("snapshot decoded", "path", s.path, "records", len(studies))
	}
	return studies, nil
}

// seekStudiesArray advances the decoder to just inside the studies array,
// whichever envelope the file uses.
func seekStudiesArray(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read opening token: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return fmt.Errorf("unexpected leading token %v", tok)
	}

	if delim == '[' {
		return nil
	}
	if delim != '{' {
		return fmt.Errorf("unexpected delimiter %v", delim)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("scan object keys: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("no studies array found")
		}
		if key == "studies" {
			open, err := dec.Token()
			if err != nil {
				return fmt.Errorf("open studies array: %w", err)
			}
			if open != json.Delim('[') {
				return fmt.Errorf("studies is not an array")
			}
			return nil
		}
		// Skip the value of any other key.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return fmt.Errorf("skip key %s: %w", key, err)
		}
	}
}
