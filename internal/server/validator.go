package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFiles embed.FS

const schemaBaseURL = "https://pokercore.dev/schemas/"

// Schema names accepted by validator.validate.
const (
	schemaCreateGame = "create_game"
	schemaAction     = "action"
)

// validator checks request bodies against the embedded JSON schemas.
type validator struct {
	schemas map[string]*jsonschema.Schema
}

func newValidator() (*validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	schemas := make(map[string]*jsonschema.Schema)
	for _, name := range []string{schemaCreateGame, schemaAction} {
		data, err := schemaFiles.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		url := schemaBaseURL + name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		schemas[name] = schema
	}
	return &validator{schemas: schemas}, nil
}

// decode validates data against the named schema and then unmarshals it
// into v.
func (v *validator) decode(name string, data []byte, out any) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("schema not found: %s", name)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return badRequest("invalid JSON: %v", err)
	}
	if err := schema.Validate(doc); err != nil {
		return badRequest("%s", validationMessage(err))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return badRequest("invalid %s: %v", strings.ReplaceAll(name, "_", " "), err)
	}
	return nil
}

// validationMessage flattens a schema error to its first concrete cause.
func validationMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}
