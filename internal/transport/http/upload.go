package http

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	apierrors "sheetcalc/internal/errors"
	"sheetcalc/internal/validation"
)

// uploadForm parses the multipart body and returns the validated "file" part.
// The caller closes the returned file.
func uploadForm(r *http.Request, maxMemory int64, uploads *validation.UploadValidator) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, apierrors.ErrMissingFile
		}
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}

	if err := uploads.Validate(header); err != nil {
		file.Close()
		return nil, nil, err
	}
	return file, header, nil
}

// calculationError maps failures from the services onto client errors while
// leaving cancellation and deadlines for the error handler to report.
func calculationError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apierrors.FromCalculation(err)
}
