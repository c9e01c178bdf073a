// internal/extraction/hybrid/window.go
package hybrid

// Window is one overlapping slice of a document sent to the model. Index
// preserves document order so deduplication keeps the earliest mention.
type Window struct {
	Index int
	Start int
	Text  string
}

// BuildWindows cuts text into fixed-size windows with the given overlap.
// The final window is allowed to be shorter; a text no longer than size
// yields a single window.
func BuildWindows(text string, size, overlap int) []Window {
	if text == "" {
		return nil
	}
	if size <= 0 || len(text) <= size {
		return []Window{{Index: 0, Start: 0, Text: text}}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	step := size - overlap
	var windows []Window
	for start := 0; start < len(text); start += step {
		end := start + size
		if end >= len(text) {
			windows = append(windows, Window{Index: len(windows), Start: start, Text: text[start:]})
			break
		}
		windows = append(windows, Window{Index: len(windows), Start: start, Text: text[start:end]})
	}
	return windows
}
