package server

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/matzehuels/navtree/pkg/errors"
)

//go:embed dashboards.schema.json
var dashboardsSchema []byte

const schemaURL = "dashboards.schema.json"

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(dashboardsSchema))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return c.Compile(schemaURL)
}

// checkSchema validates a PUT /dashboards body. Failures are INVALID_FORMAT.
func checkSchema(schema *jsonschema.Schema, body []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "body is not valid JSON")
	}
	if err := schema.Validate(inst); err != nil {
		return errors.New(errors.ErrCodeInvalidFormat, "payload does not match schema: %s", schemaMessage(err))
	}
	return nil
}

// schemaMessage flattens a validation error to a single line.
func schemaMessage(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}
