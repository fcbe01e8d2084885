package heuristics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// MatchesSchema parses the output as JSON and validates it against the
// schema. Non-JSON output fails the check.
func MatchesSchema(output string, schemaMap map[string]any) bool {
	value, schema, err := compileFor(output, schemaMap)
	if err != nil {
		return false
	}
	return schema.Validate(value) == nil
}

// SchemaErrors returns one human-readable message per schema violation,
// located by instance path. Non-JSON output and unbuildable schemas report
// a single error.
func SchemaErrors(output string, schemaMap map[string]any) []string {
	value, schema, err := compileFor(output, schemaMap)
	if err != nil {
		return []string{err.Error()}
	}

	err = schema.Validate(value)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// compileFor parses the output as JSON and compiles the schema map.
func compileFor(output string, schemaMap map[string]any) (any, *jsonschema.Schema, error) {
	var value any
	if err := json.Unmarshal([]byte(output), &value); err != nil {
		return nil, nil, fmt.Errorf("output is not valid JSON: %w", err)
	}

	// Round-trip the schema map through JSON so yaml-decoded types are
	// acceptable to the compiler.
	schemaJSON, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding schema: %w", err)
	}
	var schemaValue any
	if err := json.Unmarshal(schemaJSON, &schemaValue); err != nil {
		return nil, nil, fmt.Errorf("decoding schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaValue); err != nil {
		return nil, nil, fmt.Errorf("adding schema resource: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, nil, fmt.Errorf("compiling schema: %w", err)
	}
	return value, schema, nil
}
