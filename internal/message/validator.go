package message

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed operation-schema.json
var schemaBytes []byte

var schemaValidator *gojsonschema.Schema

func init() {
	var err error
	schemaValidator, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		panic(fmt.Sprintf("failed to load operation schema: %v", err))
	}
}

// Validate checks raw operation JSON against the embedded schema.
func Validate(data []byte) error {
	result, err := schemaValidator.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidOperation, strings.Join(msgs, "; "))
}
