package cli

import (
	"strings"
	"testing"
)

func TestCompileProducesESI(t *testing.T) {
	var out strings.Builder
	opts := Options{
		Input:     strings.NewReader(`v = 1 + 2;`),
		Output:    &out,
		Filename:  "t.js",
		NoWarning: true,
		OptLevel:  7,
	}
	code := Compile(opts)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %s)", code, out.String())
	}
	if !strings.Contains(out.String(), `<esi:assign name="v" value="3"/>`) {
		t.Errorf("expected the folded assign in the output, got %q", out.String())
	}
}

func TestCompileSyntaxErrorReturns101(t *testing.T) {
	var out strings.Builder
	opts := Options{
		Input:    strings.NewReader(`v = ;`),
		Output:   &out,
		Filename: "t.js",
		OptLevel: 7,
	}
	code := Compile(opts)
	if code != 101 {
		t.Errorf("expected exit code 101 for a syntax error, got %d", code)
	}
	if !strings.Contains(out.String(), "ERROR") {
		t.Errorf("expected an ERROR diagnostic line, got %q", out.String())
	}
}

func TestDecompileProducesJS(t *testing.T) {
	var out strings.Builder
	opts := Options{
		Input:    strings.NewReader(`<esi:assign name="v" value="3"/>`),
		Output:   &out,
		Filename: "t.esi",
	}
	code := Decompile(opts)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (output: %s)", code, out.String())
	}
	if !strings.Contains(out.String(), "v = 3;") {
		t.Errorf("expected the JS-dialect assign, got %q", out.String())
	}
}

func TestLibFromEnvSplitsOnColon(t *testing.T) {
	t.Setenv("JSLIB", "/a:/b:")
	got := LibFromEnv()
	want := []string{"/a", "/b"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
