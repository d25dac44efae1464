package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchema is the contract the feed must honor. Validation runs
// before normalization so structurally broken payloads are rejected at
// the door instead of turning into anomaly noise.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["match_id", "match_status"],
  "properties": {
    "match_id": {"type": "string", "minLength": 1},
    "match_status": {"type": "string"},
    "toss_completed": {"type": "boolean"},
    "current_innings": {"type": "string"},
    "overs": {"type": "string"},
    "match_format": {"type": "string"},
    "match_start_epoch": {"type": "integer", "minimum": 0},
    "data": {"type": "object"}
  },
  "additionalProperties": false
}`

// Validator checks raw feed payloads against the snapshot contract.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the snapshot schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("snapshot.json", strings.NewReader(snapshotSchema)); err != nil {
		return nil, fmt.Errorf("adding snapshot schema: %w", err)
	}
	schema, err := compiler.Compile("snapshot.json")
	if err != nil {
		return nil, fmt.Errorf("compiling snapshot schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks one raw payload. The returned error carries the
// schema violation details for the intake's error response.
func (v *Validator) Validate(raw []byte) error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decoding snapshot payload: %w", err)
	}
	if err := v.schema.Validate(payload); err != nil {
		return fmt.Errorf("snapshot payload rejected: %w", err)
	}
	return nil
}
