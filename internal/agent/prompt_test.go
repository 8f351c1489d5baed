package agent

import (
	"strings"
	"testing"
)

func TestTrimPrompt(t *testing.T) {
	if got := TrimPrompt("  a cat  "); got != "a cat" {
		t.Errorf("TrimPrompt = %q", got)
	}

	long := strings.Repeat("x", MaxPromptLen+50)
	got := TrimPrompt(long)
	if len([]rune(got)) != MaxPromptLen {
		t.Errorf("trimmed length = %d, want %d", len([]rune(got)), MaxPromptLen)
	}
}

func TestTrimPromptMultibyte(t *testing.T) {
	long := strings.Repeat("é", MaxPromptLen+10)
	got := TrimPrompt(long)
	if n := len([]rune(got)); n != MaxPromptLen {
		t.Errorf("rune length = %d, want %d", n, MaxPromptLen)
	}
}

func TestComposeGenerate(t *testing.T) {
	instr, err := ComposeGenerate("a lighthouse at dusk", Params{
		Style: "cinematic", Size: "1792x1024", Quality: "hd",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"a lighthouse at dusk", "cinematic", "1792x1024", "hd", "image_url"} {
		if !strings.Contains(instr, want) {
			t.Errorf("instruction missing %q:\n%s", want, instr)
		}
	}
}

func TestComposeEnhance(t *testing.T) {
	instr, err := ComposeEnhance("a cat", DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"a cat", "enhanced_prompt", "style_suggestion", "summary"} {
		if !strings.Contains(instr, want) {
			t.Errorf("instruction missing %q:\n%s", want, instr)
		}
	}
	if strings.Contains(strings.ToLower(instr), "generate an image for") {
		t.Error("enhancement instruction must not ask for image generation")
	}
}

func TestParamsValidate(t *testing.T) {
	p := Params{}
	if err := p.Validate(); err != nil {
		t.Fatalf("empty params should default, got %v", err)
	}
	if p != DefaultParams() {
		t.Errorf("defaulted params = %+v", p)
	}

	bad := Params{Style: "vaporwave-hologram", Size: Sizes[0], Quality: Qualities[0]}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown style")
	}

	badSize := Params{Style: Styles[0], Size: "7x7", Quality: Qualities[0]}
	if err := badSize.Validate(); err == nil {
		t.Error("expected error for unknown size")
	}

	badQuality := Params{Style: Styles[0], Size: Sizes[0], Quality: "ultra"}
	if err := badQuality.Validate(); err == nil {
		t.Error("expected error for unknown quality")
	}
}
