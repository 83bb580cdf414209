package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("booking")

	first := gen.Next()
	second := gen.Next()

	if first != "booking-001" || second != "booking-002" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorCanReset(t *testing.T) {
	gen := NewIDGenerator("span")
	_ = gen.Next()
	gen.SetCounter(0)

	if next := gen.Next(); next != "span-001" {
		t.Fatalf("expected span-001 after reset, got %q", next)
	}
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	gen := NewIDGenerator("")
	if next := gen.Next(); next != "id-001" {
		t.Fatalf("expected id-001, got %q", next)
	}
}
