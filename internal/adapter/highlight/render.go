package highlight

import (
	"strings"

	"monu/internal/domain"
)

// Markers wrap removed and added words when a sequence is flattened to text.
type Markers struct {
	RemovedOpen  string
	RemovedClose string
	AddedOpen    string
	AddedClose   string
}

var (
	// LegacyMarkers is the bracket-sentinel format of the
	// where_in_user_input_highlight response field.
	LegacyMarkers = Markers{
		RemovedOpen:  "[r%",
		RemovedClose: "%r]",
		AddedOpen:    "[g%",
		AddedClose:   "%g]",
	}

	// ANSIMarkers colour removed words red and added words green.
	ANSIMarkers = Markers{
		RemovedOpen:  "\x1b[1;31m",
		RemovedClose: "\x1b[0m",
		AddedOpen:    "\x1b[1;32m",
		AddedClose:   "\x1b[0m",
	}

	// PlainMarkers strips all markup.
	PlainMarkers = Markers{}
)

// Render flattens a sequence into one string, joining unit fragments with
// single spaces. A Replaced unit renders as its removed fragment, a space and
// its added fragment.
func Render(seq domain.AnnotatedSequence, m Markers) string {
	var sb strings.Builder
	for i, u := range seq {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch u.Kind {
		case domain.UnitRemoved:
			writeRemoved(&sb, m, u.Removed)
		case domain.UnitAdded:
			writeAdded(&sb, m, u.Added)
		case domain.UnitReplaced:
			writeRemoved(&sb, m, u.Removed)
			sb.WriteByte(' ')
			writeAdded(&sb, m, u.Added)
		default:
			sb.WriteString(u.Text)
		}
	}
	return sb.String()
}

func writeRemoved(sb *strings.Builder, m Markers, w string) {
	sb.WriteString(m.RemovedOpen)
	sb.WriteString(w)
	sb.WriteString(m.RemovedClose)
}

func writeAdded(sb *strings.Builder, m Markers, w string) {
	sb.WriteString(m.AddedOpen)
	sb.WriteString(w)
	sb.WriteString(m.AddedClose)
}

// Markup renders seq with LegacyMarkers.
func Markup(seq domain.AnnotatedSequence) string {
	return Render(seq, LegacyMarkers)
}

// ANSI renders seq for a colour terminal.
func ANSI(seq domain.AnnotatedSequence) string {
	return Render(seq, ANSIMarkers)
}

// Sides recovers the original and corrected token sequences from seq.
func Sides(seq domain.AnnotatedSequence) (original, corrected []string) {
	for _, u := range seq {
		switch u.Kind {
		case domain.UnitPlain:
			original = append(original, u.Text)
			corrected = append(corrected, u.Text)
		case domain.UnitRemoved:
			original = append(original, u.Removed)
		case domain.UnitAdded:
			corrected = append(corrected, u.Added)
		case domain.UnitReplaced:
			original = append(original, u.Removed)
			corrected = append(corrected, u.Added)
		}
	}
	return original, corrected
}

// Stats counts the units of seq by kind.
func Stats(seq domain.AnnotatedSequence) domain.HighlightStats {
	var s domain.HighlightStats
	for _, u := range seq {
		switch u.Kind {
		case domain.UnitPlain:
			s.Plain++
		case domain.UnitRemoved:
			s.Removed++
		case domain.UnitAdded:
			s.Added++
		case domain.UnitReplaced:
			s.Replaced++
		}
	}
	return s
}
