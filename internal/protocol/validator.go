package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	schemaBaseURL  = "https://trio.game/schemas/"
	EventSchema    = "event.schema.json"
	SnapshotSchema = "snapshot.schema.json"
)

// Validator checks raw frames against the embedded wire schemas.
type Validator struct {
	event    *jsonschema.Schema
	snapshot *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	for _, name := range []string{EventSchema, SnapshotSchema} {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(schemaBaseURL+name, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	ev, err := c.Compile(schemaBaseURL + EventSchema)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", EventSchema, err)
	}
	snap, err := c.Compile(schemaBaseURL + SnapshotSchema)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", SnapshotSchema, err)
	}
	return &Validator{event: ev, snapshot: snap}, nil
}

func (v *Validator) ValidateEvent(raw []byte) error {
	return validate(v.event, raw)
}

func (v *Validator) ValidateSnapshot(raw []byte) error {
	return validate(v.snapshot, raw)
}

func validate(s *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return s.Validate(doc)
}
