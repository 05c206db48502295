package review

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxStyleGuideChars bounds how much house style text is injected into
// the system prompt.
const maxStyleGuideChars = 8000

// StyleGuide holds house style rules loaded from .redline/style/*.md.
type StyleGuide struct {
	Sections []StyleSection
}

// StyleSection is one rule file's contents.
type StyleSection struct {
	Name string
	Text string
}

// LoadStyleGuide reads markdown rule files from dir in name order. A
// missing directory returns a nil guide and no error.
func LoadStyleGuide(dir string) (*StyleGuide, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading style directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	guide := &StyleGuide{}
	total := 0
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading style file %s: %w", name, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}
		if total+len(text) > maxStyleGuideChars {
			text = text[:maxStyleGuideChars-total]
		}
		total += len(text)
		guide.Sections = append(guide.Sections, StyleSection{
			Name: strings.TrimSuffix(name, ".md"),
			Text: text,
		})
		if total >= maxStyleGuideChars {
			break
		}
	}

	if len(guide.Sections) == 0 {
		return nil, nil
	}
	return guide, nil
}

// PromptSection renders the guide for injection into the system prompt.
func (g *StyleGuide) PromptSection() string {
	if g == nil || len(g.Sections) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nHouse style rules. Report violations as style findings:\n")
	for _, sec := range g.Sections {
		fmt.Fprintf(&b, "\n[%s]\n%s\n", sec.Name, sec.Text)
	}
	return b.String()
}
