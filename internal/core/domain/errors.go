package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRequest     = errors.New("malformed request")
	ErrNoFileInRequest      = errors.New("no file in request")
	ErrExternalTool         = errors.New("external tool failure")
	ErrExternalService      = errors.New("external service failure")
	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrTaxonomyIO           = errors.New("taxonomy storage failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
