package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const dumpSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "puzzles"],
  "properties": {
    "version": {"type": "string"},
    "puzzles": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["run_id", "seed", "vertices", "pieces", "edges"],
        "properties": {
          "run_id": {"type": "string"},
          "seed": {"type": "integer"},
          "vertices": {
            "type": ["array", "null"],
            "items": {
              "type": "array",
              "minItems": 2,
              "maxItems": 2,
              "items": {"type": "number"}
            }
          },
          "pieces": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "required": ["id", "vertices"],
              "properties": {
                "id": {"type": "integer", "minimum": 0},
                "vertices": {
                  "type": "array",
                  "minItems": 3,
                  "items": {"type": "integer", "minimum": 0}
                }
              }
            }
          },
          "edges": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "required": ["id", "path", "pieces"],
              "properties": {
                "path": {"type": "array", "minItems": 2},
                "pieces": {"type": "array", "minItems": 1, "maxItems": 2}
              }
            }
          }
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("dump.schema.json", dumpSchema)

// Validate checks data against the dump schema.
func Validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("can't decode puzzles: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid puzzle dump: %w", err)
	}
	return nil
}
