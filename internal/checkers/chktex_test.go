package checkers

import (
	"testing"

	"github.com/dshills/redline/internal/review"
)

func TestParseChktex(t *testing.T) {
	out := "paper.tex:3:10:Warning:24:Delete this space to maintain correct pagereferences.\n" +
		"paper.tex:7:1:Error:9:`}' expected, found `]': check your braces.\n" +
		"paper.tex:12:5:Warning:1:Command terminated with space.\n" +
		"ChkTeX: noise line that should be ignored\n"

	issues := parseChktex("paper.tex", out, map[int]bool{3: true, 7: true})

	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2 (line 12 not requested)", len(issues))
	}

	first := issues[0]
	if first.Line != 3 || first.Col != 10 || first.Severity != review.SeverityWarning {
		t.Errorf("first = %+v", first)
	}
	if first.Code != "chktex:24" || first.Tool != "chktex" || first.Type != review.TypeLayout {
		t.Errorf("first metadata = %+v", first)
	}

	second := issues[1]
	if second.Severity != review.SeverityError {
		t.Errorf("Error kind mapped to %q", second.Severity)
	}
	if second.Message != "`}' expected, found `]': check your braces." {
		t.Errorf("message with colons mangled: %q", second.Message)
	}
}

func TestParseChktex_Empty(t *testing.T) {
	if issues := parseChktex("paper.tex", "", map[int]bool{1: true}); len(issues) != 0 {
		t.Errorf("issues = %+v, want none", issues)
	}
}

func TestNewChktex_Defaults(t *testing.T) {
	c := NewChktex("", "")
	if c.binary != "chktex" {
		t.Errorf("binary = %q", c.binary)
	}
	if c.Name() != "chktex" {
		t.Errorf("Name() = %q", c.Name())
	}
}
