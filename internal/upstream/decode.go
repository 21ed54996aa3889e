package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/schema"
)

// envelopeKey wraps the package map in StudioRack's published documents.
const envelopeKey = "objects"

// maxIssues bounds the schema issues quoted in an error message.
const maxIssues = 5

// Parse decodes an upstream document. Both the bare package map and the
// {"objects": {...}} envelope are accepted. Errors wrap ErrMalformed.
func Parse(data []byte) (Document, error) {
	body, err := unwrapEnvelope(data)
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(schema.Upstream, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, result.Summary(maxIssues))
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// unwrapEnvelope returns the package map of an enveloped document, or data
// itself. A top-level "objects" key is an envelope only when its value is a
// map of objects without a "versions" key and none of its siblings is an
// object. Envelope siblings are scalars ("name", "version"), while siblings in a
// bare document are packages, so a plugin slugged "objects" keeps its
// neighbours.
func unwrapEnvelope(data []byte) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, ok := top[envelopeKey]
	if !ok {
		return data, nil
	}
	for key, sibling := range top {
		if key != envelopeKey && isObject(sibling) {
			return data, nil
		}
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(raw, &inner); err != nil {
		// Not an object; let schema validation report it as a bad package.
		return data, nil
	}
	if _, isPackage := inner["versions"]; isPackage {
		return data, nil
	}
	for _, entry := range inner {
		if !isObject(entry) {
			return data, nil
		}
	}
	return raw, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
