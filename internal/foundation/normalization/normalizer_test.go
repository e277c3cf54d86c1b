package normalization

import (
	"testing"
)

type testEnum string

const (
	enumAlpha testEnum = "alpha"
	enumBeta  testEnum = "beta"
	enumGamma testEnum = "gamma"
)

func newTestNormalizer() *Normalizer[testEnum] {
	return NewNormalizer(map[string]testEnum{
		"gamma": enumGamma,
		"alpha": enumAlpha,
		"BETA":  enumBeta,
	}, enumAlpha)
}

func TestNormalizer_Normalize(t *testing.T) {
	normalizer := newTestNormalizer()

	tests := []struct {
		name     string
		input    string
		expected testEnum
	}{
		{"exact match", "alpha", enumAlpha},
		{"case insensitive", "GAMMA", enumGamma},
		{"key normalized too", "beta", enumBeta},
		{"with spaces", "  beta  ", enumBeta},
		{"invalid input", "delta", enumAlpha},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizer.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizer_Parse(t *testing.T) {
	normalizer := newTestNormalizer()

	if v, err := normalizer.Parse(" Gamma "); err != nil || v != enumGamma {
		t.Errorf("Parse(valid) = %v, %v", v, err)
	}
	if v, err := normalizer.Parse(""); err != nil || v != enumAlpha {
		t.Errorf("Parse(empty) = %v, %v; want default", v, err)
	}
	if _, err := normalizer.Parse("delta"); err == nil {
		t.Error("Parse(invalid) should return error")
	}
}

func TestValidKeys(t *testing.T) {
	keys := newTestNormalizer().ValidKeys()
	expected := []string{"alpha", "beta", "gamma"}
	if len(keys) != len(expected) {
		t.Fatalf("ValidKeys() length = %d, want %d", len(keys), len(expected))
	}
	for i, key := range keys {
		if key != expected[i] {
			t.Errorf("ValidKeys()[%d] = %q, want %q", i, key, expected[i])
		}
	}
}
