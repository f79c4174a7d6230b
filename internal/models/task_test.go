package models

import (
	"encoding/json"
	"testing"
)

func TestFlexBoolUnmarshal(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`"true"`, true},
		{`"TRUE"`, true},
		{`"false"`, false},
		{`"0"`, false},
		{`"1"`, true},
		{`"yes"`, true},
		{`""`, false},
		{`1`, true},
		{`0`, false},
		{`2.5`, true},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			var b FlexBool
			if err := json.Unmarshal([]byte(tc.input), &b); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tc.input, err)
			}
			if bool(b) != tc.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tc.input, bool(b), tc.want)
			}
		})
	}
}

func TestFlexBoolInPatch(t *testing.T) {
	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"completed": "true"}`), &patch); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if patch.Completed == nil || !bool(*patch.Completed) {
		t.Error("Expected completed to coerce to true")
	}
	if patch.Text != nil {
		t.Error("Expected absent fields to stay nil")
	}
}
