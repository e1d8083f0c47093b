package models

import "errors"

// Error classes shared by every service. Wrap them with fmt.Errorf("%w: ...")
// and classify with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)
