package model

import "testing"

func TestStringSetRoundTrip(t *testing.T) {
	v, err := StringSet{"monday", "friday"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `["monday","friday"]` {
		t.Errorf("value = %v", v)
	}

	var s StringSet
	if err := s.Scan(`["monday","friday"]`); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !s.Contains("Monday") || s.Contains("sunday") {
		t.Errorf("Contains mismatch for %v", s)
	}
}

func TestNilSetsStoreEmptyArray(t *testing.T) {
	v, _ := StringSet(nil).Value()
	if v != "[]" {
		t.Errorf("nil StringSet value = %v, want []", v)
	}
	v, _ = IntSet(nil).Value()
	if v != "[]" {
		t.Errorf("nil IntSet value = %v, want []", v)
	}
}

func TestIntSetScan(t *testing.T) {
	var s IntSet
	if err := s.Scan([]byte(`[1, 6, 12]`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !s.Contains(6) || s.Contains(7) {
		t.Errorf("Contains mismatch for %v", s)
	}

	if err := s.Scan(42); err == nil {
		t.Error("expected error for unsupported type")
	}

	var empty IntSet
	if err := empty.Scan(nil); err != nil || len(empty) != 0 {
		t.Errorf("scan nil = %v, %v", empty, err)
	}
}

func TestTaskIsCompleted(t *testing.T) {
	if !(Task{Status: StatusCompleted}).IsCompleted() {
		t.Error("completed task should report IsCompleted")
	}
	if (Task{Status: StatusInProgress}).IsCompleted() {
		t.Error("in-progress task should not report IsCompleted")
	}
}
