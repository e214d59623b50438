package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://stacklok.dev/asset-librarian/catalog.schema.json"

//go:embed schema/catalog.schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add catalog schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// ValidateSchema checks the structure of a metadata document before it is
// loaded. Unknown enum values are not schema errors; Load maps them to Unknown.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyCatalog
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse catalog metadata: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("catalog metadata does not match schema: %w", err)
	}
	return nil
}

// LoadValidated validates the document against the schema, then loads it
func LoadValidated(data []byte) (*Database, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	return Load(data)
}
