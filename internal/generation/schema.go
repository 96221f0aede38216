package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// quizSchema is the contract a provider's quiz output must satisfy before it
// is decoded.
const quizSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["quizTitle", "questions"],
  "properties": {
    "quizTitle": {"type": "string", "minLength": 1},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "minItems": 2,
            "uniqueItems": true,
            "items": {"type": "string", "minLength": 1}
          },
          "correctAnswer": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var compiledQuizSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(quizSchema))
})

// validateQuizJSON checks raw provider output against quizSchema.
func validateQuizJSON(data []byte) error {
	schema, err := compiledQuizSchema()
	if err != nil {
		return fmt.Errorf("compiling quiz schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("reading quiz JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New("quiz does not match schema: " + strings.Join(msgs, "; "))
}

// extractJSON returns the first complete JSON object in s, tolerating
// Markdown code fences and prose (braces included) around it.
func extractJSON(s string) (string, bool) {
	for offset := 0; offset < len(s); {
		i := strings.IndexByte(s[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		var obj json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&obj); err == nil {
			return string(obj), true
		}
		offset = start + 1
	}
	return "", false
}
