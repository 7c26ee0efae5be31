package profile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xeipuuv/gojsonschema"
)

// profileSchema describes the JSON document shape from spec §3/§6: a
// profile key, a penalties block, and the three ordered tag-key lists.
const profileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["key", "penalties"],
  "properties": {
    "name": {"type": "string"},
    "key": {"type": "string", "minLength": 1},
    "penalties": {
      "type": "object",
      "properties": {
        "default": {"type": "number", "minimum": 1},
        "by_value": {
          "type": "object",
          "additionalProperties": {"type": "number", "minimum": 1}
        }
      }
    },
    "access_tags": {"type": "array", "items": {"type": "string"}},
    "oneway_tags": {"type": "array", "items": {"type": "string"}},
    "except_tags": {"type": "array", "items": {"type": "string"}}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(profileSchema)

// ValidationError reports why a profile document was rejected during
// Load/Parse. A profile error is never fatal to the process: the caller
// receives a typed value and decides what to do.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("profile document invalid: %v", e.Reasons)
}

// Parse validates a profile document against the profile JSON Schema and
// decodes it into a Profile. A schema violation or malformed JSON
// produces a *ValidationError, never a panic.
func Parse(data []byte) (*Profile, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &ValidationError{Reasons: []string{err.Error()}}
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}
		return nil, &ValidationError{Reasons: reasons}
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &ValidationError{Reasons: []string{err.Error()}}
	}
	return &p, nil
}

// Load reads and validates a profile document from r.
func Load(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading profile document: %w", err)
	}
	return Parse(data)
}
