package review

import (
	"regexp"
	"strings"

	"github.com/dshills/redline/internal/cache"
)

// maxSegmentChars bounds the text sent to the LLM per segment.
const maxSegmentChars = 4000

var (
	inlineMathRE = regexp.MustCompile(`\$[^$]*\$`)
	commandRE    = regexp.MustCompile(`\\[a-zA-Z]+\*?(\[[^\]]*\])?`)
	mathDelimRE  = regexp.MustCompile(`\\[\[\]()]`)
)

// sentence is one prose sentence and the 1-indexed line it starts on.
type sentence struct {
	text string
	line int
}

type docLine struct {
	line int
	text string
}

// ExtractSegments converts a document into sentence-bounded review
// segments. Lines before \begin{document} and comment lines are
// skipped, LaTeX markup is flattened to its text content, and sentences
// are packed into segments of at most maxSegmentChars with a
// one-sentence overlap between consecutive segments. The extraction is
// deterministic: identical body text always yields identical segments.
func ExtractSegments(doc cache.Document) []cache.Segment {
	var segs []cache.Segment
	for _, para := range bodyParagraphs(doc.Lines) {
		segs = append(segs, packSegments(doc.Path, splitSentences(para))...)
	}
	return segs
}

// bodyParagraphs collects the document body as paragraphs of flattened
// prose lines. Blank lines separate paragraphs; comment-only lines do
// not.
func bodyParagraphs(lines []string) [][]docLine {
	start := 0
	for i, line := range lines {
		if strings.Contains(line, `\begin{document}`) {
			start = i + 1
			break
		}
	}

	var paras [][]docLine
	var current []docLine
	flush := func() {
		if len(current) > 0 {
			paras = append(paras, current)
			current = nil
		}
	}

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.Contains(line, `\end{document}`) {
			break
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		text := flattenMarkup(stripComment(line))
		if strings.TrimSpace(text) == "" {
			continue
		}
		current = append(current, docLine{line: i + 1, text: text})
	}
	flush()
	return paras
}

// stripComment removes an unescaped % and everything after it.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '%' && (i == 0 || line[i-1] != '\\') {
			return line[:i]
		}
	}
	return line
}

// flattenMarkup reduces LaTeX markup to its text content: inline math is
// dropped, command names and optional arguments are removed, and braces
// are unwrapped so \emph{word} becomes word.
func flattenMarkup(line string) string {
	line = inlineMathRE.ReplaceAllString(line, " ")
	line = mathDelimRE.ReplaceAllString(line, " ")
	line = commandRE.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, "{", "")
	line = strings.ReplaceAll(line, "}", "")
	line = strings.ReplaceAll(line, "~", " ")
	return line
}

// splitSentences breaks a paragraph into sentences on terminal
// punctuation, tracking the line each sentence starts on.
func splitSentences(para []docLine) []sentence {
	var out []sentence
	var buf strings.Builder
	startLine := 0

	flush := func() {
		if text := strings.TrimSpace(buf.String()); text != "" {
			out = append(out, sentence{text: text, line: startLine})
		}
		buf.Reset()
		startLine = 0
	}

	for _, dl := range para {
		for _, word := range strings.Fields(dl.text) {
			if buf.Len() == 0 {
				startLine = dl.line
			} else {
				buf.WriteByte(' ')
			}
			buf.WriteString(word)
			if endsSentence(word) {
				flush()
			}
		}
	}
	flush()
	return out
}

func endsSentence(word string) bool {
	w := strings.TrimRight(word, `)]'"`)
	return strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?")
}

// packSegments joins sentences into segments no longer than
// maxSegmentChars. Consecutive segments share one sentence of overlap so
// findings near a boundary are not lost; the overlap is skipped when it
// would not fit alongside the next sentence.
func packSegments(path string, sentences []sentence) []cache.Segment {
	if len(sentences) == 0 {
		return nil
	}

	joined := func(ss []sentence) string {
		texts := make([]string, len(ss))
		for i, s := range ss {
			texts[i] = s.text
		}
		return strings.Join(texts, " ")
	}

	var segs []cache.Segment
	var cur []sentence
	flush := func() {
		if len(cur) > 0 {
			segs = append(segs, cache.Segment{
				Text:      joined(cur),
				File:      path,
				StartLine: cur[0].line,
			})
		}
	}

	for _, s := range sentences {
		if len(cur) > 0 && len(joined(cur))+1+len(s.text) > maxSegmentChars {
			flush()
			last := cur[len(cur)-1]
			cur = nil
			if len(last.text)+1+len(s.text) <= maxSegmentChars {
				cur = append(cur, last)
			}
		}
		cur = append(cur, s)
	}
	flush()
	return segs
}
