package hasher

import (
	"bytes"
	"testing"
)

func TestContentHash(t *testing.T) {
	// xxHash64 of the empty input with seed 0.
	if got := ContentHash(nil, 0); got != "ef46db3751d8e999" {
		t.Errorf("empty: got %s", got)
	}
	if got := ContentHash(nil, 8); got != "ef46db37" {
		t.Errorf("truncated: got %s", got)
	}
	if got := ContentHash(nil, 64); len(got) != FullLen {
		t.Errorf("oversized hexLen: got %s", got)
	}
}

func TestContentHashReader_MatchesBytes(t *testing.T) {
	data := bytes.Repeat([]byte("imgfit"), 4096)
	want := ContentHash(data, 0)
	got, err := ContentHashReader(bytes.NewReader(data), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("reader %s != bytes %s", got, want)
	}
}
