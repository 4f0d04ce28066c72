package validation

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	apperrors "sheetcalc/internal/errors"
)

// xlsx workbooks are zip archives.
var zipMagic = []byte("PK\x03\x04")

// UploadValidator checks workbooks posted to the API before they are parsed.
type UploadValidator struct {
	maxBytes int64
}

// NewUploadValidator creates a validator that rejects uploads above maxBytes.
// A non-positive maxBytes disables the size check.
func NewUploadValidator(maxBytes int64) *UploadValidator {
	return &UploadValidator{maxBytes: maxBytes}
}

// Validate checks the name, size and signature of an uploaded workbook.
func (v *UploadValidator) Validate(fh *multipart.FileHeader) error {
	if fh == nil {
		return apperrors.NewAppValidationError("a spreadsheet file is required")
	}
	if err := CheckWorkbookName(fh.Filename); err != nil {
		return apperrors.NewAppValidationError(err.Error())
	}
	if fh.Size == 0 {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is empty", fh.Filename))
	}
	if v.maxBytes > 0 && fh.Size > v.maxBytes {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("%s is %d bytes, above the %d byte limit", fh.Filename, fh.Size, v.maxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return CheckWorkbookSignature(f, fh.Filename)
}

// CheckWorkbookSignature reads the first bytes of r and rejects anything that
// is not a zip archive.
func CheckWorkbookSignature(r io.Reader, name string) error {
	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(r, head); err != nil || !bytes.Equal(head, zipMagic) {
		return apperrors.NewAppError(apperrors.ErrTypeParsing,
			fmt.Sprintf("%s is not a valid xlsx workbook", name), err)
	}
	return nil
}
