package prompt_test

import (
	"strings"
	"testing"

	"github.com/uxwatch/uxwatch/internal/adapter/outbound/llm/prompt"
)

func TestBuildDraftPrompt(t *testing.T) {
	b, err := prompt.NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	out, err := b.BuildDraftPrompt(prompt.DraftInput{PostText: "UI designer needed @hirer"})
	if err != nil {
		t.Fatalf("BuildDraftPrompt: %v", err)
	}

	if !strings.Contains(out, "UI designer needed @hirer") {
		t.Errorf("prompt missing post text:\n%s", out)
	}
	if !strings.Contains(out, "متن آگهی:") {
		t.Errorf("prompt missing posting header:\n%s", out)
	}
}
