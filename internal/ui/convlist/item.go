package convlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/theme"
)

// Item wraps a conversation and its display projection so it can be
// used in a bubbles/list.
type Item struct {
	Conv   model.Conversation
	Record model.DisplayRecord
}

// FilterValue returns the string used for list filtering. The list's
// own filtering is disabled (search runs over the snapshot instead),
// but bubbles/list requires the method.
func (i Item) FilterValue() string {
	return i.Record.Subject
}

// ItemDelegate renders one conversation as a multi-line card: a subject
// line, up to previewCount member preview rows, and a trailing overflow
// marker. Cards have a fixed height so the list can page correctly.
type ItemDelegate struct {
	// previewCount is how many member rows each card reserves.
	previewCount int
}

// NewDelegate creates a card delegate reserving previewCount member rows.
func NewDelegate(previewCount int) ItemDelegate {
	if previewCount < 1 {
		previewCount = 3
	}
	return ItemDelegate{previewCount: previewCount}
}

// Height returns the number of lines each card takes: the subject line,
// the reserved preview rows, and the overflow line.
func (d ItemDelegate) Height() int { return d.previewCount + 2 }

// Spacing returns the number of blank lines between cards.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single conversation card.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	rec := it.Record
	isSelected := index == m.Index()
	width := m.Width() - 4
	if width < 20 {
		width = 20
	}

	lines := make([]string, 0, d.Height())
	lines = append(lines, d.renderSubjectLine(rec, width))
	lines = append(lines, d.renderPreviews(rec, width)...)
	lines = append(lines, d.renderOverflow(rec))

	card := strings.Join(lines, "\n")
	if isSelected {
		fmt.Fprint(w, theme.SelectedCardStyle.Render(card))
		return
	}
	if rec.Unread {
		fmt.Fprint(w, theme.UnreadCardStyle.Render(card))
		return
	}
	fmt.Fprint(w, theme.CardStyle.Render(card))
}

// renderSubjectLine draws the first card row: unread marker, subject,
// member count, and the latest-member timestamp.
func (d ItemDelegate) renderSubjectLine(rec model.DisplayRecord, width int) string {
	marker := "  "
	if rec.Unread {
		marker = "● "
	}

	suffix := ""
	if rec.Count > 1 {
		suffix = fmt.Sprintf(" (%d)", rec.Count)
	}
	right := suffix + "  " + rec.Timestamp

	avail := width - runewidth.StringWidth(marker) - runewidth.StringWidth(right)
	if avail < 8 {
		avail = 8
	}
	subject := runewidth.Truncate(rec.Subject, avail, "…")

	style := theme.SubjectStyle
	if rec.Unread {
		style = theme.UnreadSubjectStyle
	}

	return marker + style.Render(subject) + theme.PreviewStyle.Render(right)
}

// renderPreviews draws the member rows, padding with blanks so every
// card keeps the same height.
func (d ItemDelegate) renderPreviews(rec model.DisplayRecord, width int) []string {
	rows := make([]string, 0, d.previewCount)
	for _, p := range rec.Previews {
		if len(rows) == d.previewCount {
			break
		}

		marker := "  "
		if p.Unread {
			marker = "· "
		}
		line := marker + runewidth.Truncate(p.Sender, width/2, "…") +
			"  " + p.Timestamp

		style := theme.PreviewStyle
		if p.Unread {
			style = theme.UnreadPreviewStyle
		}
		rows = append(rows, "  "+style.Render(runewidth.Truncate(line, width, "…")))
	}

	for len(rows) < d.previewCount {
		rows = append(rows, "")
	}
	return rows
}

// renderOverflow draws the "+N more" marker when the card could not show
// every member, or an empty line otherwise.
func (d ItemDelegate) renderOverflow(rec model.DisplayRecord) string {
	if rec.MoreCount <= 0 {
		return ""
	}
	return "  " + theme.MoreStyle.Render(fmt.Sprintf("+%d more", rec.MoreCount))
}
