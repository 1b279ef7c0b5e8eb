package jsonfile

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/poiesic/coldmail/core"
)

//go:embed store.schema.json
var storeSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(storeSchema)

// FieldError is a single schema violation at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError lists every schema violation found in a store file.
// It matches core.ErrStoreFormat under errors.Is.
type SchemaError struct {
	Path   string
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s does not match the store schema:", core.ErrStoreFormat, e.Path)
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

func (e *SchemaError) Unwrap() error {
	return core.ErrStoreFormat
}

// validateSchema checks data against the embedded store schema.
func validateSchema(path string, data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrStoreFormat, path, err)
	}

	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{
		Path:   path,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return schemaErr
}
