package validate

import "testing"

type sample struct {
	Name string   `json:"name" validate:"required"`
	Tags []string `json:"tags" validate:"max=2,dive,max=4"`
	Min  int      `json:"min" validate:"gte=18"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Min: 20})
	if err == nil || err.Error() != "name is required" {
		t.Fatalf("unexpected error: %v", err)
	}

	err = Struct(sample{Name: "a", Tags: []string{"a", "b", "c"}, Min: 20})
	if err == nil || err.Error() != "tags must be at most 2" {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := Struct(sample{Name: "a", Tags: []string{"ok"}, Min: 18}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}
