package services

import "errors"

// ErrEmptyUpload is returned when an uploaded workbook has no content.
var ErrEmptyUpload = errors.New("uploaded file is empty")
