package core

import "testing"

func TestContextVariables_CloneIsolation(t *testing.T) {
	cv := ContextVariables{
		"name":   "James",
		"nested": map[string]any{"tags": []any{"a", "b"}},
		"list":   []string{"x"},
	}

	clone := cv.Clone()
	clone["name"] = "Jane"
	clone["nested"].(map[string]any)["tags"].([]any)[0] = "z"
	clone["list"].([]string)[0] = "y"

	if cv["name"] != "James" {
		t.Errorf("top-level value leaked into original: %v", cv["name"])
	}
	if got := cv["nested"].(map[string]any)["tags"].([]any)[0]; got != "a" {
		t.Errorf("nested slice leaked into original: %v", got)
	}
	if got := cv["list"].([]string)[0]; got != "x" {
		t.Errorf("string slice leaked into original: %v", got)
	}
}

func TestContextVariables_CloneNil(t *testing.T) {
	var cv ContextVariables

	clone := cv.Clone()
	if clone == nil {
		t.Fatal("Clone of nil should return an empty map")
	}
	clone["a"] = 1
}

func TestContextVariables_MergeLastWriterWins(t *testing.T) {
	cv := ContextVariables{"a": 1, "b": 2}
	delta := ContextVariables{"b": 3, "c": map[string]any{"k": "v"}}

	cv.Merge(delta)

	if cv["a"] != 1 || cv["b"] != 3 {
		t.Fatalf("unexpected merge result: %v", cv)
	}

	delta["c"].(map[string]any)["k"] = "changed"
	if got := cv["c"].(map[string]any)["k"]; got != "v" {
		t.Errorf("merged value shares memory with delta: %v", got)
	}
}

func TestContextVariables_String(t *testing.T) {
	cv := ContextVariables{"s": "text", "n": 42, "nil": nil}

	tests := map[string]string{
		"s":       "text",
		"n":       "42",
		"nil":     "",
		"missing": "",
	}
	for key, want := range tests {
		if got := cv.String(key); got != want {
			t.Errorf("String(%q) = %q, want %q", key, got, want)
		}
	}
}
