// Package e2e provides end-to-end conformance tests for the JSON-RPC
// pipeline, driving the engine through its raw payload surface exactly
// as a transport would.
package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jrpckit/jrpc"
	"github.com/jrpckit/jrpc/protocol"
	"github.com/jrpckit/jrpc/testutil"
)

func newEngine(t *testing.T, opts ...jrpc.Option) *jrpc.Engine {
	t.Helper()

	math := jrpc.NewMethodSet().
		Expose("add", jrpc.Arity(2, func(ctx context.Context, args ...any) (any, error) {
			a, aok := args[0].(float64)
			b, bok := args[1].(float64)
			if !aok || !bok {
				return nil, fmt.Errorf("%w: numeric arguments required", jrpc.ErrInvalidArgs)
			}
			return a + b, nil
		})).
		Expose("config", func(ctx context.Context, args ...any) (any, error) {
			if len(args) == 1 {
				if m, ok := args[0].(map[string]any); ok {
					return m, nil
				}
			}
			return map[string]any{}, nil
		}).
		Expose("fail", func(ctx context.Context, args ...any) (any, error) {
			return nil, errors.New("ledger unavailable")
		}).
		Expose("explode", func(ctx context.Context, args ...any) (any, error) {
			panic("deliberate panic")
		})

	r := jrpc.NewRouter()
	if err := r.Register("math", math); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return jrpc.New(r, opts...)
}

func process(t *testing.T, engine *jrpc.Engine, payload string) []byte {
	t.Helper()
	return engine.Process(context.Background(), []byte(payload))
}

func decodeOne(t *testing.T, reply []byte) *protocol.Response {
	t.Helper()
	if reply == nil {
		t.Fatal("expected a reply, got none")
	}
	var resp protocol.Response
	if err := json.Unmarshal(reply, &resp); err != nil {
		t.Fatalf("malformed reply %s: %v", reply, err)
	}
	return &resp
}

func TestCompliance_ParseFailures(t *testing.T) {
	engine := newEngine(t)

	for _, payload := range []string{
		"",
		"   ",
		"{invalid json}",
		`{"protocolVersion":"2.0","method":`,
		"\x00\x01",
	} {
		reply := process(t, engine, payload)
		resp := decodeOne(t, reply)

		if resp.Error == nil || resp.Error.Code != protocol.CodeParseError {
			t.Errorf("payload %q: expected parse error, got %+v", payload, resp)
		}
		if !strings.Contains(string(reply), `"id":null`) {
			t.Errorf("payload %q: expected null id, got %s", payload, reply)
		}
	}
}

func TestCompliance_TopLevelShape(t *testing.T) {
	engine := newEngine(t)

	// Valid JSON that is neither an object nor an array.
	for _, payload := range []string{`42`, `"text"`, `true`, `null`} {
		resp := decodeOne(t, process(t, engine, payload))
		if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidRequest {
			t.Errorf("payload %q: expected invalid request, got %+v", payload, resp)
		}
	}
}

func TestCompliance_IDTypePreservation(t *testing.T) {
	engine := newEngine(t)

	cases := []struct {
		id   string
		want string
	}{
		{`1`, `"id":1`},
		{`"abc"`, `"id":"abc"`},
		{`null`, `"id":null`},
		{`2.5`, `"id":2.5`},
	}
	for _, tc := range cases {
		payload := fmt.Sprintf(`{"protocolVersion":"2.0","method":"math.add","params":[1,2],"id":%s}`, tc.id)
		reply := process(t, engine, payload)
		if !strings.Contains(string(reply), tc.want) {
			t.Errorf("id %s: reply %s does not echo id", tc.id, reply)
		}
	}
}

func TestCompliance_Notifications(t *testing.T) {
	engine := newEngine(t)

	t.Run("successful notification yields nothing", func(t *testing.T) {
		if reply := process(t, engine, `{"protocolVersion":"2.0","method":"math.add","params":[1,2]}`); reply != nil {
			t.Errorf("expected no reply, got %s", reply)
		}
	})

	t.Run("failing notification yields nothing", func(t *testing.T) {
		if reply := process(t, engine, `{"protocolVersion":"2.0","method":"math.fail"}`); reply != nil {
			t.Errorf("expected no reply, got %s", reply)
		}
	})

	t.Run("panicking notification yields nothing", func(t *testing.T) {
		if reply := process(t, engine, `{"protocolVersion":"2.0","method":"math.explode"}`); reply != nil {
			t.Errorf("expected no reply, got %s", reply)
		}
	})

	t.Run("null id is a call, not a notification", func(t *testing.T) {
		reply := process(t, engine, `{"protocolVersion":"2.0","method":"math.add","params":[1,2],"id":null}`)
		if reply == nil {
			t.Fatal("expected a reply for explicit null id")
		}
	})
}

func TestCompliance_Batches(t *testing.T) {
	engine := newEngine(t)

	t.Run("empty batch is one invalid request envelope", func(t *testing.T) {
		reply := process(t, engine, `[]`)
		resp := decodeOne(t, reply)
		if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidRequest {
			t.Errorf("expected invalid request, got %+v", resp)
		}
	})

	t.Run("mixed batch preserves call order and drops notifications", func(t *testing.T) {
		reply := process(t, engine, `[
			{"protocolVersion":"2.0","method":"math.add","params":[1,1],"id":1},
			{"protocolVersion":"2.0","method":"math.add","params":[2,2]},
			{"protocolVersion":"2.0","method":"math.add","params":[3,3],"id":2},
			{"protocolVersion":"2.0","method":"math.fail","params":[]},
			{"protocolVersion":"2.0","method":"math.add","params":[4,4],"id":3}
		]`)

		var resps []*protocol.Response
		if err := json.Unmarshal(reply, &resps); err != nil {
			t.Fatalf("malformed batch reply %s: %v", reply, err)
		}
		if len(resps) != 3 {
			t.Fatalf("got %d responses, want 3", len(resps))
		}
		for i, want := range []float64{2, 6, 8} {
			got, ok := resps[i].Result.(float64)
			if !ok || got != want {
				t.Errorf("responses[%d].Result = %v, want %v", i, resps[i].Result, want)
			}
		}
	})

	t.Run("all-notification batch yields nothing", func(t *testing.T) {
		reply := process(t, engine, `[
			{"protocolVersion":"2.0","method":"math.add","params":[1,1]},
			{"protocolVersion":"2.0","method":"math.fail"}
		]`)
		if reply != nil {
			t.Errorf("expected no reply, got %s", reply)
		}
	})

	t.Run("invalid item does not corrupt its siblings", func(t *testing.T) {
		reply := process(t, engine, `[
			{"protocolVersion":"2.0","method":"math.add","params":[1,1],"id":1},
			{"protocolVersion":"1.0","method":"math.add","id":2},
			{"protocolVersion":"2.0","method":"math.add","params":[2,2],"id":3}
		]`)

		var resps []*protocol.Response
		if err := json.Unmarshal(reply, &resps); err != nil {
			t.Fatalf("malformed batch reply %s: %v", reply, err)
		}
		if len(resps) != 3 {
			t.Fatalf("got %d responses, want 3", len(resps))
		}
		if resps[0].Error != nil || resps[2].Error != nil {
			t.Error("valid siblings should have succeeded")
		}
		if resps[1].Error == nil || resps[1].Error.Code != protocol.CodeInvalidRequest {
			t.Errorf("invalid item: got %+v, want invalid request", resps[1])
		}
	})

	t.Run("single request is never array-wrapped", func(t *testing.T) {
		reply := process(t, engine, `{"protocolVersion":"2.0","method":"math.add","params":[1,2],"id":1}`)
		if reply[0] != '{' {
			t.Errorf("single reply starts with %q, want object", reply[0])
		}
	})
}

func TestCompliance_ExactReplies(t *testing.T) {
	engine := newEngine(t)

	t.Run("method not found envelope", func(t *testing.T) {
		reply := process(t, engine, `{"protocolVersion":"2.0","method":"nope","id":7}`)
		want := `{"protocolVersion":"2.0","error":{"code":-32601,"message":"Method not found"},"id":7}`
		if string(reply) != want {
			t.Errorf("reply = %s, want %s", reply, want)
		}
	})

	t.Run("namespace stripping invokes local method", func(t *testing.T) {
		reply := process(t, engine, `{"protocolVersion":"2.0","method":"math.add","params":[1,2],"id":3}`)
		want := `{"protocolVersion":"2.0","result":3,"id":3}`
		if string(reply) != want {
			t.Errorf("reply = %s, want %s", reply, want)
		}
	})

	t.Run("reserialization is deterministic", func(t *testing.T) {
		payload := `{"protocolVersion":"2.0","method":"math.add","params":[1,2],"id":9}`
		first := process(t, engine, payload)
		second := process(t, engine, payload)
		if string(first) != string(second) {
			t.Errorf("replies differ: %s vs %s", first, second)
		}
	})
}

func TestCompliance_SystemNamespace(t *testing.T) {
	engine := newEngine(t)

	t.Run("listMethods enumerates the tree", func(t *testing.T) {
		resp := decodeOne(t, process(t, engine, `{"protocolVersion":"2.0","method":"system.listMethods","id":1}`))
		if resp.Error != nil {
			t.Fatalf("unexpected error: %v", resp.Error)
		}

		names, ok := resp.Result.([]any)
		if !ok {
			t.Fatalf("result type %T, want list", resp.Result)
		}
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[n.(string)] = true
		}
		for _, want := range []string{"math.add", "system.listMethods", "system.isAlive"} {
			if !set[want] {
				t.Errorf("listMethods missing %q: %v", want, names)
			}
		}
	})

	t.Run("isAlive returns true", func(t *testing.T) {
		resp := decodeOne(t, process(t, engine, `{"protocolVersion":"2.0","method":"system.isAlive","id":1}`))
		if resp.Error != nil {
			t.Fatalf("unexpected error: %v", resp.Error)
		}
		if resp.Result != true {
			t.Errorf("result = %v, want true", resp.Result)
		}
	})
}

func TestCompliance_ErrorTaxonomy(t *testing.T) {
	engine := newEngine(t)
	tc := testutil.NewTestClient(t, engine)

	tc.AssertErrorCode("math.missing", nil, protocol.CodeMethodNotFound)
	tc.AssertErrorCode("math.add", []any{1}, protocol.CodeInvalidParams)
	tc.AssertErrorCode("math.add", []any{"a", "b"}, protocol.CodeInvalidParams)
	tc.AssertErrorCode("math.fail", nil, protocol.CodeApplicationError)
	tc.AssertErrorCode("math.explode", nil, protocol.CodeInternalError)
}

func TestCompliance_DiscloseDetails(t *testing.T) {
	t.Run("details hidden by default", func(t *testing.T) {
		engine := newEngine(t)
		reply := process(t, engine, `{"protocolVersion":"2.0","method":"math.fail","id":1}`)
		if strings.Contains(string(reply), "ledger unavailable") {
			t.Errorf("reply leaks internals: %s", reply)
		}
	})

	t.Run("details attached when enabled", func(t *testing.T) {
		engine := newEngine(t, jrpc.WithDiscloseDetails())
		reply := process(t, engine, `{"protocolVersion":"2.0","method":"math.fail","id":1}`)
		if !strings.Contains(string(reply), "ledger unavailable") {
			t.Errorf("reply missing disclosed detail: %s", reply)
		}
	})
}

func TestCompliance_ParamShapes(t *testing.T) {
	engine := newEngine(t)
	tc := testutil.NewTestClient(t, engine)

	t.Run("keyed params arrive as one mapping", func(t *testing.T) {
		result, err := tc.Call("math.config", map[string]any{"region": "eu", "retries": 3.0})
		if err != nil {
			t.Fatalf("Call: %v", err)
		}
		m, ok := result.(map[string]any)
		if !ok {
			t.Fatalf("result type %T, want map", result)
		}
		if m["region"] != "eu" {
			t.Errorf("region = %v, want eu", m["region"])
		}
	})

	t.Run("absent params invoke with no arguments", func(t *testing.T) {
		if _, err := tc.Call("math.config", nil); err != nil {
			t.Fatalf("Call: %v", err)
		}
	})
}

func TestCompliance_ConcurrentBatch(t *testing.T) {
	engine := newEngine(t, jrpc.WithConcurrency(4))

	items := make([]string, 16)
	for i := range items {
		items[i] = fmt.Sprintf(`{"protocolVersion":"2.0","method":"math.add","params":[%d,0],"id":%d}`, i, i)
	}
	payload := "[" + strings.Join(items, ",") + "]"

	reply := process(t, engine, payload)

	var resps []*protocol.Response
	if err := json.Unmarshal(reply, &resps); err != nil {
		t.Fatalf("malformed batch reply: %v", err)
	}
	if len(resps) != len(items) {
		t.Fatalf("got %d responses, want %d", len(resps), len(items))
	}
	for i, resp := range resps {
		if got := resp.Result.(float64); got != float64(i) {
			t.Errorf("responses[%d].Result = %v, want %d (order not preserved)", i, got, i)
		}
	}
}
