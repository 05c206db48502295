package review

import (
	"testing"

	"github.com/dshills/redline/internal/cache"
)

func TestSuppressions_IgnoreNextLine(t *testing.T) {
	content := "clean line\n% redline: ignore-next-line\nflagged line\nclean again\n"
	sup := ParseSuppressions(cache.NewDocument("a.tex", content))

	if sup.Suppressed(1, "vale") {
		t.Error("line 1 should not be suppressed")
	}
	if !sup.Suppressed(3, "vale") {
		t.Error("line 3 should be suppressed")
	}
	if sup.Suppressed(4, "vale") {
		t.Error("line 4 should not be suppressed")
	}
}

func TestSuppressions_ToolScoped(t *testing.T) {
	content := "% redline: ignore-next-line vale\nflagged line\n"
	sup := ParseSuppressions(cache.NewDocument("a.tex", content))

	if !sup.Suppressed(2, "vale") {
		t.Error("vale should be suppressed on line 2")
	}
	if sup.Suppressed(2, "chktex") {
		t.Error("chktex should not be suppressed on line 2")
	}
}

func TestSuppressions_Range(t *testing.T) {
	content := "one\n% redline: ignore-start\ntwo\nthree\n% redline: ignore-end\nfour\n"
	sup := ParseSuppressions(cache.NewDocument("a.tex", content))

	if sup.Suppressed(1, "vale") {
		t.Error("line before range suppressed")
	}
	for _, line := range []int{3, 4} {
		if !sup.Suppressed(line, "vale") {
			t.Errorf("line %d inside range not suppressed", line)
		}
	}
	if sup.Suppressed(6, "vale") {
		t.Error("line after range suppressed")
	}
}

func TestSuppressions_UnclosedRangeRunsToEOF(t *testing.T) {
	content := "% redline: ignore-start\ntwo\nthree\n"
	sup := ParseSuppressions(cache.NewDocument("a.tex", content))

	if !sup.Suppressed(2, "vale") || !sup.Suppressed(3, "vale") {
		t.Error("unclosed range should suppress to end of file")
	}
}

func TestSuppressions_IgnoreFile(t *testing.T) {
	content := "% redline: ignore-file\ntext\n"
	sup := ParseSuppressions(cache.NewDocument("a.tex", content))

	if !sup.Suppressed(2, "vale") || !sup.Suppressed(99, "chktex") {
		t.Error("ignore-file should suppress everything")
	}
}

func TestSuppressions_IgnoreFileToolScoped(t *testing.T) {
	content := "% redline: ignore-file codespell\ntext\n"
	sup := ParseSuppressions(cache.NewDocument("a.tex", content))

	if !sup.Suppressed(2, "codespell") {
		t.Error("codespell should be file-suppressed")
	}
	if sup.Suppressed(2, "vale") {
		t.Error("vale should not be file-suppressed")
	}
}

func TestSuppressions_DirectiveAfterContent(t *testing.T) {
	content := "some text % redline: ignore-next-line\nflagged\n"
	sup := ParseSuppressions(cache.NewDocument("a.tex", content))

	if !sup.Suppressed(2, "vale") {
		t.Error("trailing directive should still apply")
	}
}

func TestSuppressions_Apply(t *testing.T) {
	content := "% redline: ignore-next-line\nflagged\nclean\n"
	sup := ParseSuppressions(cache.NewDocument("a.tex", content))

	issues := []Issue{
		{Tool: "vale", Line: 2, Message: "dropped"},
		{Tool: "vale", Line: 3, Message: "kept"},
	}
	kept, dropped := sup.Apply(issues)
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(kept) != 1 || kept[0].Message != "kept" {
		t.Errorf("kept = %+v", kept)
	}
}
