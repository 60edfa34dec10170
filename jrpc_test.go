package jrpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jrpckit/jrpc"
	"github.com/jrpckit/jrpc/protocol"
)

func newFacadeEngine(t *testing.T, opts ...jrpc.Option) *jrpc.Engine {
	t.Helper()

	math := jrpc.NewMethodSet().
		Expose("add", jrpc.Arity(2, func(ctx context.Context, args ...any) (any, error) {
			a, aok := args[0].(float64)
			b, bok := args[1].(float64)
			if !aok || !bok {
				return nil, jrpc.ErrInvalidArgs
			}
			return a + b, nil
		})).
		Expose("fail", func(ctx context.Context, args ...any) (any, error) {
			return nil, errors.New("deliberate failure")
		})

	r := jrpc.NewRouter()
	if err := r.Register("math", math); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return jrpc.New(r, opts...)
}

func TestEngine_Process(t *testing.T) {
	t.Run("dispatches namespaced call", func(t *testing.T) {
		engine := newFacadeEngine(t)

		reply := engine.Process(context.Background(),
			[]byte(`{"protocolVersion":"2.0","method":"math.add","params":[2,3],"id":1}`))

		want := `{"protocolVersion":"2.0","result":5,"id":1}`
		if string(reply) != want {
			t.Errorf("reply = %s, want %s", reply, want)
		}
	})

	t.Run("system namespace is mounted", func(t *testing.T) {
		engine := newFacadeEngine(t)

		reply := engine.Process(context.Background(),
			[]byte(`{"protocolVersion":"2.0","method":"system.listMethods","id":1}`))

		var resp protocol.Response
		if err := json.Unmarshal(reply, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error != nil {
			t.Fatalf("unexpected error: %v", resp.Error)
		}

		names, ok := resp.Result.([]any)
		if !ok {
			t.Fatalf("expected list result, got %T", resp.Result)
		}
		joined := make([]string, 0, len(names))
		for _, n := range names {
			joined = append(joined, n.(string))
		}
		all := strings.Join(joined, ",")
		for _, want := range []string{"math.add", "math.fail", "system.isAlive", "system.listMethods"} {
			if !strings.Contains(all, want) {
				t.Errorf("listMethods = %v, missing %q", joined, want)
			}
		}
	})

	t.Run("argument mismatch maps to invalid params", func(t *testing.T) {
		engine := newFacadeEngine(t)

		reply := engine.Process(context.Background(),
			[]byte(`{"protocolVersion":"2.0","method":"math.add","params":[1],"id":2}`))

		var resp protocol.Response
		if err := json.Unmarshal(reply, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error == nil {
			t.Fatal("expected error response")
		}
		if resp.Error.Code != protocol.CodeInvalidParams {
			t.Errorf("code = %d, want %d", resp.Error.Code, protocol.CodeInvalidParams)
		}
	})

	t.Run("handler failure maps to application error", func(t *testing.T) {
		engine := newFacadeEngine(t)

		reply := engine.Process(context.Background(),
			[]byte(`{"protocolVersion":"2.0","method":"math.fail","id":3}`))

		var resp protocol.Response
		if err := json.Unmarshal(reply, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error == nil {
			t.Fatal("expected error response")
		}
		if resp.Error.Code != protocol.CodeApplicationError {
			t.Errorf("code = %d, want %d", resp.Error.Code, protocol.CodeApplicationError)
		}
	})
}

func TestWithMiddleware(t *testing.T) {
	t.Run("middleware package types plug into the engine", func(t *testing.T) {
		var seen []string

		observe := func(next jrpc.MiddlewareHandlerFunc) jrpc.MiddlewareHandlerFunc {
			return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
				seen = append(seen, req.Method)
				return next(ctx, req)
			}
		}

		engine := newFacadeEngine(t, jrpc.WithMiddleware(observe))

		payload := []byte(`[` +
			`{"protocolVersion":"2.0","method":"math.add","params":[1,2],"id":1},` +
			`{"protocolVersion":"2.0","method":"math.add","params":[3,4],"id":2}]`)
		if reply := engine.Process(context.Background(), payload); reply == nil {
			t.Fatal("expected reply")
		}

		if len(seen) != 2 {
			t.Fatalf("middleware saw %d requests, want 2", len(seen))
		}
	})

	t.Run("default stack wraps without altering results", func(t *testing.T) {
		engine := newFacadeEngine(t,
			jrpc.WithMiddleware(jrpc.DefaultMiddleware(jrpc.NopLogger{})...))

		reply := engine.Process(context.Background(),
			[]byte(`{"protocolVersion":"2.0","method":"math.add","params":[2,3],"id":1}`))

		want := `{"protocolVersion":"2.0","result":5,"id":1}`
		if string(reply) != want {
			t.Errorf("reply = %s, want %s", reply, want)
		}
	})

	t.Run("recover middleware keeps panics inside the envelope", func(t *testing.T) {
		boom := jrpc.NewMethodSet().
			Expose("panic", func(ctx context.Context, args ...any) (any, error) {
				panic("kaboom")
			})

		engine := jrpc.NewWithHandler(boom, jrpc.WithMiddleware(jrpc.Recover()))

		reply := engine.Process(context.Background(),
			[]byte(`{"protocolVersion":"2.0","method":"panic","id":1}`))

		var resp protocol.Response
		if err := json.Unmarshal(reply, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error == nil || resp.Error.Code != protocol.CodeInternalError {
			t.Errorf("expected internal error, got %+v", resp.Error)
		}
	})
}
