package remote

import (
	"bytes"
	"path/filepath"
	"strings"

	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
)

// MaxUploadBytes caps one CSV upload.
const MaxUploadBytes = 10 << 20

// UploadName reduces a client-supplied path to the base filename sent to
// the API.
func UploadName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// ValidateUpload rejects anything the API would refuse before a request is
// made: a missing name, a non-.csv extension, blank or oversized content.
func ValidateUpload(filename string, content []byte) error {
	name := UploadName(filename)
	if name == "" {
		return apperrors.E(apperrors.KindInvalidInput, "Please select a CSV file to upload.")
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return apperrors.E(apperrors.KindInvalidInput, "Only .csv files can be uploaded.")
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return apperrors.E(apperrors.KindInvalidInput, "The selected file is empty.")
	}
	if len(content) > MaxUploadBytes {
		return apperrors.E(apperrors.KindInvalidInput, "The selected file is too large.")
	}
	return nil
}
