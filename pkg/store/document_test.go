package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestSetInCopiesPathAndKeepsSiblings(t *testing.T) {
	sibling := map[string]any{"keep": true}
	doc := map[string]any{
		"a":       map[string]any{"b": 1},
		"sibling": sibling,
	}
	next, err := setIn(doc, []string{"a", "b"}, 2)
	if err != nil {
		t.Fatalf("setIn: %v", err)
	}
	out := next.(map[string]any)
	if out["a"].(map[string]any)["b"] != 2 {
		t.Fatalf("expected new value, got %#v", out)
	}
	if doc["a"].(map[string]any)["b"] != 1 {
		t.Fatalf("source document must not change")
	}
	if reflect.ValueOf(out["sibling"]).UnsafePointer() != reflect.ValueOf(sibling).UnsafePointer() {
		t.Fatalf("untouched sibling must keep its identity")
	}
}

func TestSetInCreatesMissingObjects(t *testing.T) {
	next, err := setIn(map[string]any{}, []string{"x", "y"}, "v")
	if err != nil {
		t.Fatalf("setIn: %v", err)
	}
	want := map[string]any{"x": map[string]any{"y": "v"}}
	if !reflect.DeepEqual(want, next) {
		t.Fatalf("want %#v got %#v", want, next)
	}
}

func TestSetInArrays(t *testing.T) {
	list := []any{"a", "b"}
	cases := []struct {
		name   string
		tokens []string
		want   []any
	}{
		{"replace", []string{"1"}, []any{"a", "z"}},
		{"append", []string{"-"}, []any{"a", "b", "z"}},
		{"pad", []string{"3"}, []any{"a", "b", nil, "z"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := setIn(list, tc.tokens, "z")
			if err != nil {
				t.Fatalf("setIn: %v", err)
			}
			if !reflect.DeepEqual(tc.want, next) {
				t.Fatalf("want %#v got %#v", tc.want, next)
			}
		})
	}
	if list[1] != "b" || len(list) != 2 {
		t.Fatalf("source array must not change")
	}
}

func TestSetInConflicts(t *testing.T) {
	cases := []struct {
		name   string
		doc    any
		tokens []string
	}{
		{"through scalar", map[string]any{"a": 1}, []string{"a", "b"}},
		{"non numeric index", []any{1}, []string{"x"}},
		{"leading zero", []any{1}, []string{"01"}},
		{"huge gap", []any{}, []string{"999999999"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := setIn(tc.doc, tc.tokens, 1); !errors.Is(err, ErrConflict) {
				t.Fatalf("expected ErrConflict, got %v", err)
			}
		})
	}
}

func TestDeleteIn(t *testing.T) {
	doc := map[string]any{
		"a":    map[string]any{"b": 1, "c": 2},
		"list": []any{"x", "y", "z"},
	}
	next, changed := deleteIn(doc, []string{"a", "b"})
	if !changed {
		t.Fatalf("expected change")
	}
	if _, ok := next.(map[string]any)["a"].(map[string]any)["b"]; ok {
		t.Fatalf("member should be removed")
	}
	if _, ok := doc["a"].(map[string]any)["b"]; !ok {
		t.Fatalf("source document must not change")
	}

	next, changed = deleteIn(doc, []string{"list", "1"})
	if !changed || !reflect.DeepEqual([]any{"x", "z"}, next.(map[string]any)["list"]) {
		t.Fatalf("expected splice, got %#v", next)
	}

	for _, tokens := range [][]string{{"missing"}, {"a", "b", "c"}, {"list", "9"}, {"list", "-"}} {
		if _, changed := deleteIn(doc, tokens); changed {
			t.Fatalf("deleting %v should be a no-op", tokens)
		}
	}
}

func TestLookup(t *testing.T) {
	doc := map[string]any{"a": []any{map[string]any{"b": "ok"}}, "nil": nil}
	if v, ok := lookup(doc, []string{"a", "0", "b"}); !ok || v != "ok" {
		t.Fatalf("expected ok, got %v %v", v, ok)
	}
	if _, ok := lookup(doc, []string{"a", "1"}); ok {
		t.Fatalf("out of range index must be absent")
	}
	if v, ok := lookup(doc, []string{"nil"}); !ok || v != nil {
		t.Fatalf("explicit nil should be present, got %v %v", v, ok)
	}
	if v, ok := lookup(doc, nil); !ok || !reflect.DeepEqual(v, doc) {
		t.Fatalf("empty pointer should return the document")
	}
}

func TestPointerHelpers(t *testing.T) {
	tokens, err := Split("/a~1b/c~0d")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if !reflect.DeepEqual([]string{"a/b", "c~d"}, tokens) {
		t.Fatalf("unexpected tokens %#v", tokens)
	}
	if got := Join(tokens...); got != "/a~1b/c~0d" {
		t.Fatalf("join mismatch %q", got)
	}
	if _, err := Split("no-slash"); !errors.Is(err, ErrInvalidPointer) {
		t.Fatalf("expected ErrInvalidPointer, got %v", err)
	}
	if !Overlaps("/a", "/a/b") || !Overlaps("/a/b", "/a") || !Overlaps("", "/x") {
		t.Fatalf("ancestor pointers should overlap")
	}
	if Overlaps("/a/b", "/a/c") || Overlaps("/ab", "/a") {
		t.Fatalf("siblings must not overlap")
	}
}
