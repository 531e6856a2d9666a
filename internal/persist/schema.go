package persist

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/matthewbaird/lensgrid/internal/event"
)

//go:embed schema.cue
var schemaSource string

var definitions = map[event.Blob]string{
	event.BlobInventory: "#Inventory",
	event.BlobColors:    "#Colors",
	event.BlobOptions:   "#Options",
}

// schema validates raw blobs against the embedded CUE definitions.
type schema struct {
	ctx  *cue.Context
	defs map[event.Blob]cue.Value
}

func compileSchema() (*schema, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compiling blob schema: %w", err)
	}
	s := &schema{ctx: ctx, defs: make(map[event.Blob]cue.Value, len(definitions))}
	for name, def := range definitions {
		v := root.LookupPath(cue.ParsePath(def))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("looking up %s: %w", def, err)
		}
		s.defs[name] = v
	}
	return s, nil
}

// decode validates data as the named blob, applies schema defaults and
// unmarshals the result into dst.
func (s *schema) decode(name event.Blob, data []byte, dst any) error {
	def, ok := s.defs[name]
	if !ok {
		return fmt.Errorf("no schema for blob %q", name)
	}
	v := s.ctx.CompileBytes(data, cue.Filename(string(name)+".json"))
	if err := v.Err(); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validating: %w", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if err := json.Unmarshal(out, dst); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	return nil
}
