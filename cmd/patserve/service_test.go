package main

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testService(t *testing.T, eval bool) (*Service, func()) {
	dir, err := ioutil.TempDir("", "patserve")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewService(filepath.Join(dir, "test.db"), eval)
	if err != nil {
		t.Fatal(err)
	}
	return s, func() {
		s.Close()
		os.RemoveAll(dir)
	}
}

func TestServiceDo(t *testing.T) {
	for _, eval := range []bool{false, true} {
		s, cleanup := testService(t, eval)

		ctx := context.Background()

		do := func(frame string) interface{} {
			op, err := ParseSOp([]byte(frame))
			if err != nil {
				t.Fatal(err)
			}
			response, err := s.Do(ctx, op)
			if err != nil {
				t.Fatal(err)
			}
			return response
		}

		do(`{"type": {"name": "Point", "fields": ["x", "y"]}}`)
		do(`{"put": {"name": "pt", "pattern": {"%rec": {"type": "Point", "pos": ["?x", "?y"]}}}}`)

		response := do(`{"match": {"name": "pt", "value": {"$type": "Point", "x": 3, "y": 4}}}`)
		want := map[string]interface{}{
			"bindings": map[string]interface{}{"x": int64(3), "y": int64(4)},
		}
		if !reflect.DeepEqual(want, response) {
			t.Fatalf("eval=%v: %#v", eval, response)
		}

		response = do(`{"match": {"pattern": [1, "?x"], "value": [2, 3]}}`)
		if !reflect.DeepEqual(map[string]interface{}{"nomatch": true}, response) {
			t.Fatalf("eval=%v: %#v", eval, response)
		}

		response = do(`{"list": true}`)
		m := response.(map[string]interface{})
		if _, have := m["patterns"].(map[string]interface{})["pt"]; !have {
			t.Fatalf("eval=%v: %#v", eval, response)
		}

		do(`{"rem": "pt"}`)

		op, err := ParseSOp([]byte(`{"match": {"name": "pt", "value": 1}}`))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Do(ctx, op); err == nil {
			t.Fatal("wanted an error for a removed pattern")
		}

		cleanup()
	}
}
