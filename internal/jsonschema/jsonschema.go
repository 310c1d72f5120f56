// SPDX-License-Identifier: Apache-2.0

// Package jsonschema validates run files against the run file JSON schema
// before they are decoded.
package jsonschema

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

var runSchema = mustCompile()

func mustCompile() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("unmarshalling run file schema: %v", err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		panic(fmt.Sprintf("adding run file schema resource: %v", err))
	}

	return c.MustCompile("schema.json")
}

// ValidateRun validates raw run file JSON against the run file schema.
func ValidateRun(data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("run file is not valid JSON: %w", err)
	}

	return runSchema.Validate(inst)
}
