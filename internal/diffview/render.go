package diffview

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DividerMarker is the literal run text rendered as a structural divider
// instead of plain text.
const DividerMarker = "---"

// Span is a styled segment of the rendered diff.
type Span struct {
	// Text is the span content.
	Text string

	// Op is the alignment operation the span belongs to.
	Op Op

	// Emphasis marks a *text*-delimited sub-span. Emphasis layers bold
	// on top of the span's base style so existing markup survives
	// diffing.
	Emphasis bool

	// Divider marks a structural divider; Text is the raw marker.
	Divider bool
}

// RenderedDiff is the display artifact produced by BuildDiff.
type RenderedDiff struct {
	Spans []Span
}

var (
	addedStyle     = lipgloss.NewStyle().Bold(true)
	removedStyle   = lipgloss.NewStyle().Strikethrough(true)
	dividerStyle   = lipgloss.NewStyle().Faint(true)
	unchangedStyle = lipgloss.NewStyle()
)

// BuildDiff tokenizes, aligns and renders two text blobs.
func BuildDiff(oldText, newText string) RenderedDiff {
	runs := Diff(Tokenize(oldText), Tokenize(newText))

	var spans []Span
	for _, run := range runs {
		spans = append(spans, runSpans(run)...)
	}
	return RenderedDiff{Spans: spans}
}

// emphasisPattern matches *text*-delimited emphasis within a run.
var emphasisPattern = regexp.MustCompile(`\*[^*\n]+\*`)

// runSpans converts one run into styled spans. A run whose joined text
// is exactly the divider marker becomes a divider span; otherwise the
// run is split around emphasis markup.
func runSpans(run Run) []Span {
	text := run.Text()
	if text == DividerMarker {
		return []Span{{Text: DividerMarker, Op: run.Op, Divider: true}}
	}

	var spans []Span
	last := 0
	for _, loc := range emphasisPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			spans = append(spans, Span{Text: text[last:loc[0]], Op: run.Op})
		}
		spans = append(spans, Span{Text: text[loc[0]:loc[1]], Op: run.Op, Emphasis: true})
		last = loc[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:], Op: run.Op})
	}
	return spans
}

// String renders the diff with terminal styling: added spans bold,
// removed spans struck through, unchanged spans plain.
func (d RenderedDiff) String() string {
	var sb strings.Builder
	for _, span := range d.Spans {
		if span.Divider {
			sb.WriteString(dividerStyle.Render(DividerMarker))
			continue
		}

		style := unchangedStyle
		switch span.Op {
		case OpAdded:
			style = addedStyle
		case OpRemoved:
			style = removedStyle
		}
		if span.Emphasis {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(span.Text))
	}
	return sb.String()
}

// Plain renders the diff without styling, marking additions as {+text+}
// and removals as [-text-]. Used when stdout is not a terminal.
func (d RenderedDiff) Plain() string {
	var sb strings.Builder
	for _, span := range d.Spans {
		switch {
		case span.Divider:
			sb.WriteString(span.Text)
		case span.Op == OpAdded:
			sb.WriteString("{+" + span.Text + "+}")
		case span.Op == OpRemoved:
			sb.WriteString("[-" + span.Text + "-]")
		default:
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}

// Changed reports whether the diff contains any added or removed spans.
func (d RenderedDiff) Changed() bool {
	for _, span := range d.Spans {
		if span.Op != OpUnchanged {
			return true
		}
	}
	return false
}
