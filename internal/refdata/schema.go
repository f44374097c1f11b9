package refdata

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema validates a reference document before it is decoded.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// CompileSchema compiles a JSON Schema document.
func CompileSchema(name, source string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompileSchema is CompileSchema for package-level schemas.
func MustCompileSchema(name, source string) *Schema {
	s, err := CompileSchema(name, source)
	if err != nil {
		panic(err)
	}
	return s
}

func mustEmbeddedSchema(file string) *Schema {
	data, err := schemaFS.ReadFile("schemas/" + file)
	if err != nil {
		panic(err)
	}
	return MustCompileSchema(strings.TrimSuffix(file, ".json"), string(data))
}

var (
	occupationsSchema = mustEmbeddedSchema("occupations.json")
	prefixMapsSchema  = mustEmbeddedSchema("prefix_maps.json")
	catalogSchema     = mustEmbeddedSchema("catalog.json")
	questionsSchema   = mustEmbeddedSchema("questions.json")
)

// SchemaError lists every violation found in one document.
type SchemaError struct {
	Schema     string
	Violations []string
}

func (e *SchemaError) Error() string {
	const shown = 5
	v := e.Violations
	suffix := ""
	if len(v) > shown {
		suffix = fmt.Sprintf(" (and %d more)", len(v)-shown)
		v = v[:shown]
	}
	return fmt.Sprintf("document does not match %s schema: %s%s", e.Schema, strings.Join(v, "; "), suffix)
}

// Validate checks data against the schema. A nil Schema accepts everything.
func (s *Schema) Validate(data []byte) error {
	if s == nil {
		return nil
	}
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate against %s schema: %w", s.name, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violations = append(violations, field+": "+desc.Description())
	}
	return &SchemaError{Schema: s.name, Violations: violations}
}
