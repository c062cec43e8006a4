package validation

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResourceName = "schema.json"

// SchemaValidator checks the JSON form of a value against a JSON schema (draft 2020-12).
type SchemaValidator struct {
	schema *jsonschema.Schema
}

func NewSchemaValidator(schema []byte) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(schemaResourceName, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(schemaResourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &SchemaValidator{schema: compiled}, nil
}

func MustNewSchemaValidator(schema []byte) *SchemaValidator {
	validator, err := NewSchemaValidator(schema)
	if err != nil {
		panic(err)
	}
	return validator
}

func (v *SchemaValidator) Validate(_ context.Context, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for schema validation: %w", err)
	}

	var instance any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err = decoder.Decode(&instance); err != nil {
		return fmt.Errorf("failed to decode value for schema validation: %w", err)
	}

	err = v.schema.Validate(instance)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err
	}
	var violations Violations
	collectSchemaViolations(validationErr, &violations)
	if len(violations) == 0 {
		return Violations{{Code: CodeSchema, Message: validationErr.Message}}
	}
	// keywords of one schema are evaluated in map order
	slices.SortStableFunc(violations, func(a, b Violation) int {
		return cmp.Compare(a.Field, b.Field)
	})
	return violations
}

func collectSchemaViolations(err *jsonschema.ValidationError, violations *Violations) {
	if len(err.Causes) == 0 {
		*violations = append(*violations, Violation{
			Field:   pointerToPath(err.InstanceLocation),
			Code:    keywordFromLocation(err.KeywordLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaViolations(cause, violations)
	}
}

// pointerToPath turns "/items/0/name" into "items[0].name".
func pointerToPath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return ""
	}

	var builder strings.Builder
	for i, segment := range strings.Split(pointer, "/") {
		segment = strings.ReplaceAll(strings.ReplaceAll(segment, "~1", "/"), "~0", "~")
		if isIndex(segment) {
			builder.WriteString("[" + segment + "]")
			continue
		}
		if i > 0 {
			builder.WriteByte('.')
		}
		builder.WriteString(segment)
	}
	return builder.String()
}

func keywordFromLocation(location string) string {
	location = strings.TrimSuffix(location, "/")
	if idx := strings.LastIndexByte(location, '/'); idx >= 0 {
		location = location[idx+1:]
	}
	if location == "" || isIndex(location) {
		return CodeSchema
	}
	return location
}

func isIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
