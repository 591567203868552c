package vod

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const createSchemaJSON = `{
	"type": "object",
	"required": ["title", "url"],
	"properties": {
		"title":       {"type": "string", "minLength": 3, "maxLength": 100},
		"description": {"type": ["string", "null"], "maxLength": 500},
		"url":         {"type": "string", "pattern": "^https?://"},
		"tags":        {"type": ["array", "null"], "items": {"type": "string", "pattern": "\\S"}}
	}
}`

const updateSchemaJSON = `{
	"type": "object",
	"properties": {
		"title":       {"type": "string", "minLength": 3, "maxLength": 100},
		"description": {"type": "string", "maxLength": 500},
		"url":         {"type": "string", "pattern": "^https?://"},
		"tags":        {"type": "array", "items": {"type": "string", "pattern": "\\S"}}
	}
}`

var (
	createSchema = mustCompile("vod_create.json", createSchemaJSON)
	updateSchema = mustCompile("vod_update.json", updateSchemaJSON)
)

func mustCompile(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Errorf("add schema %s: %w", name, err))
	}
	return compiler.MustCompile(name)
}

// ValidateCreate checks a create request against the catalog document rules.
func ValidateCreate(in VodCreate) error { return validate(createSchema, in) }

// ValidateUpdate checks the fields present in an update request.
func ValidateUpdate(in VodUpdate) error { return validate(updateSchema, in) }

func validate(schema *jsonschema.Schema, in interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, leafMessage(err))
	}
	return nil
}

// leafMessage reduces a nested validation error to its first concrete cause.
func leafMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
