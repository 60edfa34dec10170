// Package schema provides JSON Schema generation from Go types and
// validation of keyed method parameters against those schemas.
//
// # Basic Usage
//
// Generate a schema from a Go value:
//
//	type Person struct {
//	    Name string `json:"name" jsonschema:"required"`
//	    Age  int    `json:"age"`
//	}
//
//	s, err := schema.Generate(Person{})
//
// Validate raw JSON or a decoded value:
//
//	err := s.Validate(json.RawMessage(`{"age": "x"}`))
//
// # Typed Methods
//
// Bind turns a typed function into a method that only accepts a keyed
// params object matching the struct's schema:
//
//	type SetParams struct {
//	    Key   string `json:"key" jsonschema:"required"`
//	    Value any    `json:"value" jsonschema:"required"`
//	}
//
//	methods := router.NewMethodSet().
//	    Expose("set", schema.Bind(func(ctx context.Context, p SetParams) (any, error) {
//	        store[p.Key] = p.Value
//	        return true, nil
//	    }))
//
// Callers sending positional params, missing required fields or values
// of the wrong type receive an invalid params error.
//
// # Struct Tags
//
// The json tag controls the property name, and json:"-" excludes a
// field. The jsonschema tag accepts comma-separated directives:
//
//	type Example struct {
//	    Required string `json:"required" jsonschema:"required"`
//	    Desc     string `json:"desc" jsonschema:"description=Field description"`
//	    Level    int    `json:"level" jsonschema:"minimum=1,maximum=10"`
//	    Mode     string `json:"mode" jsonschema:"enum=fast|safe"`
//	}
package schema
