package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates s to maxWidth terminal cells, adding suffix
// when it cuts.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth-suffixWidth, "") + suffix
}

func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// barCells scales a pixel bar width to terminal cells. scale is cells per
// pixel. Any non-zero bar keeps at least one cell so short units stay
// visible.
func barCells(pixels int, scale float64) int {
	if pixels <= 0 {
		return 0
	}
	n := int(float64(pixels)*scale + 0.5)
	return max(n, 1)
}

// barScale maps the widest bar onto avail cells, capped at maxCells when
// maxCells > 0.
func barScale(widest, avail, maxCells int) float64 {
	if maxCells > 0 && maxCells < avail {
		avail = maxCells
	}
	if widest <= 0 || avail <= 0 {
		return 0
	}
	return float64(avail) / float64(widest)
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.2fs", s)
}
