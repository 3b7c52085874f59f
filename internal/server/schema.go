package server

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const inputSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"const": "input"},
    "events": {
      "type": "array",
      "minItems": 1,
      "maxItems": 64,
      "items": {
        "type": "object",
        "required": ["kind"],
        "properties": {
          "kind": {"enum": ["start", "move", "end", "jump", "jetpack_on", "jetpack_off"]},
          "stick": {"enum": ["move", "look"]},
          "x": {"type": "number"},
          "y": {"type": "number"}
        },
        "additionalProperties": false
      }
    },
    "sample": {
      "type": "object",
      "properties": {
        "move": {"$ref": "#/$defs/vec2"},
        "look": {"$ref": "#/$defs/vec2"},
        "jump": {"type": "boolean"},
        "jetpack": {"type": "boolean"}
      },
      "additionalProperties": false
    }
  },
  "oneOf": [
    {"required": ["events"]},
    {"required": ["sample"]}
  ],
  "additionalProperties": false,
  "$defs": {
    "vec2": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"}
      },
      "additionalProperties": false
    }
  }
}`

var inputFrameSchema = jsonschema.MustCompileString("input.schema.json", inputSchema)

func validateInputJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if err := inputFrameSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return nil
}
