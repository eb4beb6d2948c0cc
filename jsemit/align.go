package jsemit

import "golang.org/x/text/width"

// stringWidth measures s the way a fixed-width terminal would display it,
// counting each East Asian wide or fullwidth rune as two columns. Assign
// runs are column-aligned on the '=' (see emitAssignGroup), and an
// ASCII-only len() would misalign any run containing a wide identifier.
func stringWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}
