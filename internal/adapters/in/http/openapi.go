package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"orderflow/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// LoadOpenAPI parses and validates the embedded API document.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// bodyValidator checks request bodies against component schemas of the API document.
type bodyValidator struct {
	doc *openapi3.T
}

// decode validates body against the named schema and unmarshals it into dst.
func (v bodyValidator) decode(schemaName string, body []byte, dst any) error {
	ref, ok := v.doc.Components.Schemas[schemaName]
	if !ok || ref.Value == nil {
		return fmt.Errorf("schema %q is not defined", schemaName)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	if err := ref.Value.VisitJSON(raw); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return nil
}
