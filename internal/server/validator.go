package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFiles embed.FS

const schemaBaseURL = "https://pokeradvisor.dev/schemas/"

// Schema names, one per request body.
const (
	SchemaAnalyze   = "analyze"
	SchemaExplain   = "explain"
	SchemaRecognize = "recognize"
	SchemaMessage   = "message"
)

// SchemaError lists every violation found in a request body.
type SchemaError struct {
	Schema     string
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s request is invalid: %s", e.Schema, strings.Join(e.Violations, "; "))
}

// Validator checks request bodies against the embedded JSON Schemas
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	entries, err := schemaFiles.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	for _, entry := range entries {
		data, err := schemaFiles.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(schemaBaseURL+entry.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", entry.Name(), err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(entries))
	for _, entry := range entries {
		schema, err := compiler.Compile(schemaBaseURL + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", entry.Name(), err)
		}
		schemas[strings.TrimSuffix(entry.Name(), ".json")] = schema
	}

	return &Validator{schemas: schemas}, nil
}

// Validate checks data against the named schema. Malformed JSON and schema
// violations are both reported as a *SchemaError.
func (v *Validator) Validate(name string, data []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("schema not found: %s", name)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &SchemaError{Schema: name, Violations: []string{"invalid JSON: " + err.Error()}}
	}

	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return &SchemaError{Schema: name, Violations: violations(verr)}
}

// violations flattens the error tree into leaf messages prefixed with the
// offending field.
func violations(verr *jsonschema.ValidationError) []string {
	var out []string
	for _, e := range verr.BasicOutput().Errors {
		if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
			continue
		}
		loc := strings.TrimPrefix(e.InstanceLocation, "/")
		if loc == "" {
			out = append(out, e.Error)
			continue
		}
		out = append(out, loc+": "+e.Error)
	}
	if len(out) == 0 {
		out = append(out, verr.Message)
	}
	return out
}
