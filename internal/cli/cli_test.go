package cli

import (
	"io"
	"testing"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"resolve", "tui", "serve", "history", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "svg" {
		t.Errorf("parseFormats(\"\") = %v, want [svg]", got)
	}
	got := parseFormats("pdf,mermaid,json")
	if len(got) != 3 || got[0] != "pdf" || got[1] != "mermaid" || got[2] != "json" {
		t.Errorf("parseFormats = %v", got)
	}
}

func TestValidateFormats(t *testing.T) {
	if err := validateFormats([]string{"svg", "pdf", "png", "dot", "mermaid", "json"}); err != nil {
		t.Errorf("validateFormats rejected valid formats: %v", err)
	}
	if err := validateFormats([]string{"svg", "docx"}); err == nil {
		t.Error("validateFormats should reject docx")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, format, want string
	}{
		{"chart", "svg", "chart.svg"},
		{"chart.svg", "svg", "chart.svg"},
		{"chart.svg", "pdf", "chart.pdf"},
		{"out/acme", "mermaid", "out/acme.mmd"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.output, tt.format, got, tt.want)
		}
	}
}
