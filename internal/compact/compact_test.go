package compact

import (
	"reflect"
	"sync"
	"testing"
)

// TestRoundTrip tests that a map survives encode and decode.
func TestRoundTrip(t *testing.T) {
	in := map[string]any{
		"statements": []any{
			map[string]any{
				"conjunction": "and",
				"clause": map[string]any{
					"op": "eq",
				},
			},
		},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty payload")
	}

	out, err := DecodeMap(data)
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}

	statements, ok := out["statements"].([]any)
	if !ok {
		t.Fatalf("expected statements array, got %T", out["statements"])
	}
	stmt, ok := statements[0].(map[string]any)
	if !ok {
		t.Fatalf("expected statement map, got %T", statements[0])
	}
	if stmt["conjunction"] != "and" {
		t.Errorf("expected conjunction 'and', got %v", stmt["conjunction"])
	}
}

// TestScalarKinds tests how scalar values survive the codec.
func TestScalarKinds(t *testing.T) {
	in := map[string]any{
		"str":   "hello",
		"float": 42.5,
		"bool":  true,
		"null":  nil,
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := DecodeMap(data)
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}

	if out["str"] != "hello" {
		t.Errorf("expected 'hello', got %v", out["str"])
	}
	if out["float"] != 42.5 {
		t.Errorf("expected 42.5, got %v", out["float"])
	}
	if out["bool"] != true {
		t.Errorf("expected true, got %v", out["bool"])
	}
	if v, ok := out["null"]; !ok || v != nil {
		t.Errorf("expected present nil, got %v (present=%v)", v, ok)
	}
}

// TestDecodeEmpty tests that empty payloads are rejected.
func TestDecodeEmpty(t *testing.T) {
	if _, err := DecodeMap(nil); err == nil {
		t.Error("expected error for nil payload")
	}
	if _, err := DecodeMap([]byte{}); err == nil {
		t.Error("expected error for empty payload")
	}
}

// TestDecodeGarbage tests that non-zstd payloads are rejected.
func TestDecodeGarbage(t *testing.T) {
	if _, err := DecodeMap([]byte("not a zstd frame")); err == nil {
		t.Error("expected error for garbage payload")
	}
}

// TestCodecClose tests that a dedicated codec can be created and closed.
func TestCodecClose(t *testing.T) {
	c, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	data, err := c.Encode(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := c.DecodeMap(data)
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"k": "v"}) {
		t.Errorf("expected {k:v}, got %v", out)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

// TestConcurrency tests that the shared codec is safe for concurrent use.
func TestConcurrency(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := Encode(map[string]any{"n": "payload"})
			if err != nil {
				errs <- err
				return
			}
			if _, err := DecodeMap(data); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent codec error: %v", err)
	}
}
