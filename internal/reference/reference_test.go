package reference

import "testing"

func TestValidCodes(t *testing.T) {
	for _, code := range []string{"EX", "VG", "GO", "PO", "VP"} {
		if !ValidCondition(code) {
			t.Fatalf("expected %q to be a valid condition", code)
		}
	}
	for _, code := range []string{"VL", "LO", "AV", "HI", "VH"} {
		if !ValidMileage(code) {
			t.Fatalf("expected %q to be a valid mileage", code)
		}
	}
	if ValidCondition("XX") || ValidMileage("GO") {
		t.Fatal("unexpected code accepted")
	}
}

func TestValuationOptionsReturnsCopies(t *testing.T) {
	opts := ValuationOptions()
	opts.Conditions[0].Code = "mutated"

	if ValuationOptions().Conditions[0].Code == "mutated" {
		t.Fatal("expected canonical list to be immutable")
	}
}
