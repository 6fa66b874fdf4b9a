package api

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const sessionSchemaURL = "schema://session-report.json"

// sessionSchema describes the body of POST /api/characters/{id}/sessions.
const sessionSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["skill_id", "elapsed_seconds", "accuracy"],
  "properties": {
    "skill_id":             {"type": "string", "minLength": 1, "maxLength": 64},
    "stage_id":             {"type": "string", "maxLength": 64},
    "session_id":           {"type": "string", "maxLength": 128},
    "elapsed_seconds":      {"type": "number", "minimum": 0},
    "accuracy":             {"type": "number", "minimum": 0, "maximum": 1},
    "wpm":                  {"type": "number", "minimum": 0},
    "score":                {"type": "number"},
    "streak_at_completion": {"type": "integer", "minimum": 0},
    "timestamp":            {"type": "string", "minLength": 1}
  }
}`

var (
	compileOnce     sync.Once
	compiledSession *jsonschema.Schema
	compileErr      error
)

func sessionValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(sessionSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse session schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(sessionSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSession, compileErr = c.Compile(sessionSchemaURL)
	})
	return compiledSession, compileErr
}

// validateSessionBody checks raw against the session schema.
func validateSessionBody(raw []byte) error {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := sessionValidator()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
