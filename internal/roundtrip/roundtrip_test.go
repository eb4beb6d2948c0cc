package roundtrip

import "testing"

func TestFixedPointHoldsForSimpleAssign(t *testing.T) {
	diff, err := FixedPoint("t.js", `v = 1 + 2;`)
	if err != nil {
		t.Fatalf("FixedPoint failed: %v", err)
	}
	if diff != "" {
		t.Errorf("expected the fixed point to hold, got diff:\n%s", diff)
	}
}

func TestFixedPointHoldsForConditional(t *testing.T) {
	diff, err := FixedPoint("t.js", `
		if (a matches '^x' as m) {
			v = m;
		} else {
			v = 'none';
		}
	`)
	if err != nil {
		t.Fatalf("FixedPoint failed: %v", err)
	}
	if diff != "" {
		t.Errorf("expected the fixed point to hold, got diff:\n%s", diff)
	}
}

func TestCompileJSThenDecompileESIRoundTrips(t *testing.T) {
	esi, err := CompileJS("t.js", `v = 1;`)
	if err != nil {
		t.Fatalf("CompileJS failed: %v", err)
	}
	js, err := DecompileESI("t.js", esi)
	if err != nil {
		t.Fatalf("DecompileESI failed: %v", err)
	}
	if js == "" {
		t.Errorf("expected non-empty JS-dialect output")
	}
}
