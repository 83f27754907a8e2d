package devutil

import (
	"reflect"
	"testing"
)

func TestPickFromStruct(t *testing.T) {
	v := struct {
		ID        string `json:"_id"`
		DayNumber int    `json:"dayNumber"`
		Secret    string `json:"secret"`
	}{"d1", 3, "hide me"}

	got := Pick(v, "_id", "dayNumber")
	want := map[string]any{"_id": "d1", "dayNumber": float64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Pick = %v, want %v", got, want)
	}
}

func TestPickMissingKeys(t *testing.T) {
	got := Pick(map[string]any{"a": 1}, "b", "c")
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestPickUnmarshalableValue(t *testing.T) {
	got := Pick(func() {}, "a")
	if len(got) != 0 {
		t.Errorf("expected empty map for unmarshalable input, got %v", got)
	}
}
