package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrpckit/jrpc/protocol"
	"github.com/jrpckit/jrpc/router"
)

// Bind returns a method that accepts keyed params only. Defaults from
// T's struct tags fill absent fields, then the params object is
// validated against the schema generated from T, including required,
// minimum, maximum and enum tags, and decoded into T before fn runs.
// Positional or missing params, and any validation failure, classify
// as invalid params.
func Bind[T any](fn func(ctx context.Context, params T) (any, error)) router.MethodFunc {
	var prototype T
	s, err := Generate(prototype)
	if err != nil {
		return func(ctx context.Context, args ...any) (any, error) {
			return nil, fmt.Errorf("generate schema for %T: %w", prototype, err)
		}
	}

	return func(ctx context.Context, args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: keyed params object required", protocol.ErrInvalidArgs)
		}
		obj, ok := args[0].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: keyed params object required, got %T", protocol.ErrInvalidArgs, args[0])
		}

		obj = s.ApplyDefaults(obj)
		if err := s.ValidateValue(obj); err != nil {
			return nil, fmt.Errorf("%w: %s", protocol.ErrInvalidArgs, err)
		}

		data, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}

		var params T
		if err := json.Unmarshal(data, &params); err != nil {
			return nil, fmt.Errorf("%w: %s", protocol.ErrInvalidArgs, err)
		}

		return fn(ctx, params)
	}
}
