package checkers

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/dshills/redline/internal/review"
)

// Config carries per-tool settings shared by New.
type Config struct {
	ChktexBinary      string
	ChktexRC          string
	ValeBinary        string
	ValeConfig        string
	CodespellBinary   string
	LatexindentBinary string

	LanguageToolURL           string
	LanguageToolLanguage      string
	LanguageToolDisabledRules []string
}

// New creates a checker by name.
func New(name string, cfg Config) (review.Checker, error) {
	switch name {
	case "chktex":
		return NewChktex(cfg.ChktexBinary, cfg.ChktexRC), nil
	case "vale":
		return NewVale(cfg.ValeBinary, cfg.ValeConfig), nil
	case "codespell":
		return NewCodespell(cfg.CodespellBinary), nil
	case "latexindent":
		return NewLatexindent(cfg.LatexindentBinary), nil
	case "languagetool":
		return NewLanguageTool(cfg.LanguageToolURL, cfg.LanguageToolLanguage, cfg.LanguageToolDisabledRules), nil
	default:
		return nil, fmt.Errorf("unknown checker: %s", name)
	}
}

// Names lists the known checker names in their usual run order.
func Names() []string {
	return []string{"chktex", "vale", "codespell", "latexindent", "languagetool"}
}

func binaryOr(bin, fallback string) string {
	if bin == "" {
		return fallback
	}
	return bin
}

func installed(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

func lineSet(lines []int) map[int]bool {
	set := make(map[int]bool, len(lines))
	for _, n := range lines {
		set[n] = true
	}
	return set
}

// toolOutput runs the command and returns stdout. Checkers exit non-zero
// when they find problems, so a failed exit with output still parses;
// only a failed exit with nothing on stdout is an error.
func toolOutput(cmd *exec.Cmd) (string, error) {
	out, err := cmd.Output()
	if err != nil && len(strings.TrimSpace(string(out))) == 0 {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
