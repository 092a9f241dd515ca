package main

import (
	"testing"

	"github.com/thefrozenfishy/acb"
)

func TestOpenOptionsEncoding(t *testing.T) {
	for _, valid := range []string{"", "shift-jis", "sjis", "utf-8", "utf8"} {
		if _, err := openOptions("", valid); err != nil {
			t.Errorf("openOptions(%q) failed: %v", valid, err)
		}
	}
	if _, err := openOptions("", "latin-1"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestCodecName(t *testing.T) {
	if got := codecName(acb.EncodeTypeHCA); got != "HCA" {
		t.Errorf("codecName(HCA) = %q", got)
	}
	if got := codecName(42); got != "42" {
		t.Errorf("codecName(42) = %q, want numeric fallback", got)
	}
}

func TestRenderTrackTable(t *testing.T) {
	out := renderTrackTable([]acb.Track{
		{ID: 1, Name: "bgm", EncodeType: acb.EncodeTypeHCA, Streaming: true},
	})
	if out == "" {
		t.Fatal("empty table output")
	}
}
