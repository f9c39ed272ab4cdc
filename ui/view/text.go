package view

import (
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// textValue returns the content of a Text widget without the trailing newline
// Tk always keeps at the end.
func textValue(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimRight(strings.Join(w.Get("1.0", END), ""), "\n")
}
