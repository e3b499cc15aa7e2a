package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/model"
)

//go:embed schema.cue
var schemaSource []byte

//go:embed default_catalog.yaml
var defaultSource []byte

// Format is the encoding of a catalog file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatFromPath infers the catalog format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q (want .yaml, .json or .cue)", filepath.Ext(path))
	}
}

// SchemaError reports a catalog that does not satisfy the product schema.
type SchemaError struct {
	Message string
	Pos     token.Pos
	// More is the number of further violations not shown in Message.
	More int
}

func (e *SchemaError) Error() string {
	msg := e.Message
	if e.Pos.IsValid() {
		msg = fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.More > 0 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, e.More)
	}
	return "catalog schema: " + msg
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	products, err := Parse(defaultSource, FormatYAML, "default_catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return New(products)
}

// Load reads, validates and indexes the catalog file at path.
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	products, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	return New(products)
}

// Parse decodes data in the given format, validates it against the
// embedded schema and returns the products in file order. filename is
// used for error positions only.
func Parse(data []byte, format Format, filename string) ([]model.Product, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	var doc cue.Value
	switch format {
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
		}
		doc = ctx.Encode(raw)
	case FormatJSON, FormatCUE:
		doc = ctx.CompileBytes(data, cue.Filename(filename))
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	out, err := v.LookupPath(cue.ParsePath("products")).MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var products []model.Product
	if err := json.Unmarshal(out, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// formatCUEError keeps the first violation with its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Message: err.Error()}
	}

	first := errs[0]
	se := &SchemaError{Message: first.Error(), More: len(errs) - 1}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		se.Pos = positions[0]
	}
	return se
}
