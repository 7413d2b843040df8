package gamedata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// LoadValidated validates an embedded JSON file against an embedded JSON schema before unmarshalling it.
func LoadValidated[T any](filename, schemaFile string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read embedded file %s: %w", filename, err)
	}
	if err := Validate(content, schemaFile); err != nil {
		return result, fmt.Errorf("invalid %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON from %s: %w", filename, err)
	}

	return result, nil
}

// Validate checks a JSON document against an embedded schema.
func Validate(content []byte, schemaFile string) error {
	schema, err := compileSchema(schemaFile)
	if err != nil {
		return err
	}

	// The validator expects numbers decoded as json.Number.
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return schema.Validate(doc)
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	raw, err := dataFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schema %s: %w", schemaFile, err)
	}
	schema, err := jsonschema.CompileString(schemaFile, string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", schemaFile, err)
	}
	return schema, nil
}
