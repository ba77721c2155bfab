package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds compiled schemas keyed by Schema.Name.
var compiledSchemas = struct {
	sync.RWMutex
	m map[string]*jsonschema.Schema
}{m: make(map[string]*jsonschema.Schema)}

// finish is the common tail of every adapter: reject truncated output,
// then normalise and validate against the request schema.
func finish(req Request, raw json.RawMessage, stop StopReason) (json.RawMessage, error) {
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: raw}
	}
	return validateResponse(req.Schema, raw)
}

// validateResponse returns the cleaned JSON or *ErrInvalidResponse. A nil
// schema only cleans.
func validateResponse(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	clean := extractJSON(raw)
	if schema == nil {
		return clean, nil
	}

	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, args...)}
	}

	var doc any
	if err := json.Unmarshal(clean, &doc); err != nil {
		return nil, invalid("invalid JSON: %w", err)
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, invalid("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return nil, invalid("schema validation failed: %w", err)
	}
	return clean, nil
}

// extractJSON drops markdown fences and any prose around the outermost
// JSON object. Models do both even in JSON mode.
func extractJSON(raw json.RawMessage) json.RawMessage {
	b := bytes.TrimSpace(raw)
	if bytes.HasPrefix(b, []byte("```")) {
		if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
			b = b[nl+1:]
		}
		b = bytes.TrimSpace(bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```")))
	}
	if len(b) > 0 && b[0] != '{' && b[0] != '[' {
		start, end := bytes.IndexByte(b, '{'), bytes.LastIndexByte(b, '}')
		if start >= 0 && end > start {
			b = b[start : end+1]
		}
	}
	return b
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	compiledSchemas.RLock()
	s, ok := compiledSchemas.m[schema.Name]
	compiledSchemas.RUnlock()
	if ok {
		return s, nil
	}

	// Round-trip through JSON so typed Go slices become plain []any.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	url := "mem://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	s, err = c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiledSchemas.Lock()
	compiledSchemas.m[schema.Name] = s
	compiledSchemas.Unlock()
	return s, nil
}
