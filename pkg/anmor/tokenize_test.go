package anmor

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestUnits(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"^run$", []string{"^run$"}},
		{"a ^b/c$ d", []string{"a ", "^b/c$", " d"}},
		{"^a$^b$", []string{"^a$", "^b$"}},
		{`x\^y ^z$`, []string{`x\^y `, "^z$"}},
		{`^a\$b$`, []string{`^a\$b$`}},
		{"^open", []string{"^open"}},
		{`end\`, []string{`end\`}},
		{"", nil},
	}

	for _, tc := range testCases {
		got := Units(tc.input)
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("Units(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input       string
		expected    string
		description string
	}{
		{"^run$", "run", "Bare analysed unit"},
		{"^runs/run<vblex><pres><p3><sg>$", "runs", "Analyses dropped"},
		{"^The/the<det><def>$ ^cat/cat<n><sg>$^./.<sent>$\n", "The cat .", "Sentence with newline"},
		{"[^Hello/hello<ij>$   world]", "Hello world", "Raw text and brackets"},
		{"[<p>]^a/a<n>$", "<p>] a", "Only outer brackets trimmed"},
		{"^*unknown/*unknown$", "*unknown", "Unknown word marker kept"},
		{"  [ ^a/b$ ]  ", "a", "Outer brackets trimmed"},
		{`^a\/b/c<n>$`, `a\`, "Escaped slash still splits"},
		{"plain text only", "plain text only", "No analyses"},
		{"", "", "Empty line"},
	}

	for _, tc := range testCases {
		if got := Tokenize(tc.input); got != tc.expected {
			t.Errorf("%s: Tokenize(%q) = %q, expected %q", tc.description, tc.input, got, tc.expected)
		}
	}
}

func TestStream(t *testing.T) {
	input := "^run$\n^The/the<det>$ ^dog/dog<n>$\n\n^last/last<adj>$"
	var out bytes.Buffer

	if err := Stream(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	expected := "run\nThe dog\n\nlast\n"
	if out.String() != expected {
		t.Errorf("Stream output = %q, expected %q", out.String(), expected)
	}
}
