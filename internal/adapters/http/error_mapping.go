package httpadapter

import (
	"net/http"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// mapErrorToHTTPStatus keeps the pipeline's two failure classes apart:
// multipart parse problems are the caller's fault, everything that
// breaks later in the pipeline is a server-side 500.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrMalformedRequest):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNoFileInRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
