package report

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	apperrors "descstats/internal/errors"
	"descstats/internal/files"
	"descstats/pkg/contracts/domain"
)

// WriteJSON encodes v with the given indent width and writes it to path
// atomically.
func WriteJSON(path string, v any, indent int) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return apperrors.NewParsingError("failed to encode report", err).WithContext("path", path)
	}

	if err := files.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return apperrors.NewStorageError("failed to write report", err).WithContext("path", path)
	}
	return nil
}

// ReadJSON loads a report written by WriteJSON. A missing file is a
// NOT_FOUND error.
func ReadJSON(path string) (*domain.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("report").WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("failed to read report", err).WithContext("path", path)
	}

	rep := domain.NewReport()
	if err := json.Unmarshal(data, rep); err != nil {
		return nil, apperrors.NewParsingError("failed to decode report", err).WithContext("path", path)
	}
	return rep, nil
}
