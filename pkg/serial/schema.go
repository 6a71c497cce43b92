// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package serial

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/holomush/metaprop/pkg/meta"
)

// schemaCache maps reflect.Type to its compiled *jschema.Schema.
var schemaCache sync.Map

// SchemaID returns the $id of the schema generated for t.
func SchemaID(t reflect.Type) string {
	return "https://holomush.dev/schemas/metaprop/" + t.Name() + ".schema.json"
}

// Schema generates the JSON Schema of T's document form. Property names
// follow the meta struct tags.
func Schema[T any]() ([]byte, error) {
	return SchemaFor(reflect.TypeFor[T]())
}

// SchemaFor is Schema for a type chosen at run time.
func SchemaFor(t reflect.Type) ([]byte, error) {
	r := jsonschema.Reflector{
		FieldNameTag:               meta.TagName,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.ReflectFromType(t)
	schema.ID = jsonschema.ID(SchemaID(t))
	schema.Title = t.Name()
	schema.Description = "Document form of " + t.String()

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_FAILED").With("type", t.String()).Wrap(err)
	}
	return data, nil
}

// Validate checks a decoded document tree against T's schema.
func Validate[T any](doc any) error {
	return validateFor(reflect.TypeFor[T](), doc)
}

func validateFor(t reflect.Type, doc any) error {
	sch, err := compiledSchema(t)
	if err != nil {
		return err
	}
	if err := sch.Validate(jsonTypes(doc)); err != nil {
		return oops.Code("SCHEMA_VALIDATION").With("type", t.String()).Wrap(err)
	}
	return nil
}

func compiledSchema(t reflect.Type) (*jschema.Schema, error) {
	if sch, ok := schemaCache.Load(t); ok {
		return sch.(*jschema.Schema), nil
	}

	schemaBytes, err := SchemaFor(t)
	if err != nil {
		return nil, err
	}
	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.Code("SCHEMA_FAILED").With("type", t.String()).Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, oops.Code("SCHEMA_FAILED").With("type", t.String()).Wrap(err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_FAILED").With("type", t.String()).Wrap(err)
	}

	actual, _ := schemaCache.LoadOrStore(t, sch)
	return actual.(*jschema.Schema), nil
}

// jsonTypes normalizes decoded YAML and TOML trees to the value types the
// validator understands.
func jsonTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = jsonTypes(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = jsonTypes(v)
		}
		return result
	case string, int, int64, float64, bool, nil:
		return val
	case float32:
		return float64(val)
	default:
		if b, err := json.Marshal(val); err == nil {
			var result any
			if err := json.Unmarshal(b, &result); err == nil {
				return result
			}
		}
		return val
	}
}
