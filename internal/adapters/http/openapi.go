package httpadapter

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var apiContract []byte

// contractValidator checks JSON requests against the embedded API
// contract and serves the contract itself for tooling.
type contractValidator struct {
	doc    *openapi3.T
	router routers.Router
}

func newContractValidator() (*contractValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(apiContract)
	if err != nil {
		return nil, fmt.Errorf("load api contract: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate api contract: %w", err)
	}
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("index api contract: %w", err)
	}
	return &contractValidator{doc: doc, router: router}, nil
}

// validateRequest checks r against the contract. The body is restored
// afterwards, so the handler can decode it again.
func (v *contractValidator) validateRequest(ctx context.Context, r *http.Request) error {
	route, pathParams, err := v.router.FindRoute(r)
	if err != nil {
		return err
	}
	return openapi3filter.ValidateRequest(ctx, &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
	})
}

func (v *contractValidator) contractJSON() ([]byte, error) {
	return v.doc.MarshalJSON()
}
