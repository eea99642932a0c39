package table

import (
	"reflect"
	"testing"
)

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"a", "70%", "x"},
		{"<END>", "5%", "y"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignRight})
	want := []string{
		"a      70%  x",
		"<END>   5%  y",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected rows:\n%q\nwant\n%q", got, want)
	}
}

func TestFormatIgnoresEscapeSequences(t *testing.T) {
	rows := [][]string{
		{"\x1b[1mab\x1b[0m", "1"},
		{"abcd", "2"},
	}
	got := Format(rows, nil)
	if got[0] != "\x1b[1mab\x1b[0m    1" {
		t.Fatalf("styled cell padded incorrectly: %q", got[0])
	}
	if got[1] != "abcd  2" {
		t.Fatalf("unexpected plain row: %q", got[1])
	}
}

func TestFormatRaggedRows(t *testing.T) {
	got := Format([][]string{{"a", "b"}, {"ccc"}}, nil)
	if !reflect.DeepEqual(got, []string{"a    b", "ccc"}) {
		t.Fatalf("unexpected rows %q", got)
	}
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}
