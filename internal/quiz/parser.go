package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/quizgen/internal/llm"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// Parse decodes raw model text into a Quiz. It returns *ParseError when the
// text is not JSON and *ValidationError when the JSON is not a valid quiz.
// When the text is not plain JSON, the first markdown code fence in it is
// decoded instead, so prose before or after the fence is tolerated.
func Parse(raw string) (*Quiz, error) {
	text := extractJSON(raw)

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	compiled, err := compiledSchema(Schema)
	if err != nil {
		// The schema is a package constant; failing to compile it is a bug.
		panic(fmt.Sprintf("quiz: compile schema %q: %v", Schema.Name, err))
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, &ValidationError{Raw: raw, Err: err}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	var q Quiz
	if err := dec.Decode(&q); err != nil {
		return nil, &ValidationError{Raw: raw, Err: err}
	}

	if errs := q.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Raw: raw, Err: errors.Join(errs...)}
	}

	return &q, nil
}

// Marshal renders v as indented JSON with non-ASCII text left as is.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// extractJSON returns the JSON document carried by raw model text: the text
// itself when it is valid JSON, else the body of its first code fence.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if json.Valid([]byte(text)) {
		return text
	}
	if body, ok := fencedBlock(text); ok {
		return body
	}
	return text
}

// fencedBlock returns the contents of the first ``` fence in s, with an
// optional language tag removed. An unterminated fence runs to the end of s.
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	body := s[start+3:]

	// Drop the language tag, whether it sits on its own line or is glued
	// to the payload.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	} else if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}

	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(schema *llm.Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value (any), not Go maps
	// with typed slices, so round-trip the definition through JSON.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	defParsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
