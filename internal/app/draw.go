package app

import (
	"fmt"
	"strconv"
	"strings"

	"sheetcalc/internal/grid"

	"github.com/gdamore/tcell/v2"
)

const helpText = "\n i / Enter - edit \n Ctrl+Enter - save&stay \n = - formula \n : - command \n" +
	" Ctrl←/Ctrl→ - col width \n Ctrl↑/Ctrl↓ - row height \n F2/F3 - add row/col \n F5 - refresh \n" +
	" PgUp/PgDn/Home/End - scroll \n :w file | :o file | :refresh \n "

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()

	headers := a.Engine.ColumnLabels(len(a.ColWidths))

	// header row: column labels
	x := a.LeftGutter
	for c := a.ViewCol; c < len(a.ColWidths) && x < w; c++ {
		wc := a.ColWidths[c]
		style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if c == a.CurCol {
			style = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
			a.fill(s, x, 0, wc, 1, style)
		}
		a.printPadded(s, x, 0, headers[c], style, wc)
		x += wc
	}

	y := 1
	for r := a.ViewRow; r < len(a.RowHeights) && y < h-a.StatusLines; r++ {
		gutter := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if r == a.CurRow {
			gutter = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
			a.fill(s, 0, y, a.LeftGutter-1, 1, gutter)
		}
		a.printTextFixedWidth(s, 0, y, strconv.Itoa(r+1), gutter, a.LeftGutter-1)

		x = a.LeftGutter
		hh := a.RowHeights[r]
		for c := a.ViewCol; c < len(a.ColWidths) && x < w; c++ {
			wc := a.ColWidths[c]
			text := a.GetDisplayText(r, c)
			selected := r == a.CurRow && c == a.CurCol
			if selected && a.Mode == "insert" {
				text = a.InputBuf
			}
			style := tcell.StyleDefault
			if selected {
				style = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGray)
			}
			a.fill(s, x, y, wc, hh, style)
			for dy, line := range a.splitLines(text, hh) {
				a.printPadded(s, x, y+dy, line, style, wc)
			}
			x += wc
		}
		y += hh
	}

	a.drawStatus(s)

	if a.HelpVisible {
		a.drawHelpPopup(s, helpText)
	}
	s.HideCursor()
	s.Show()
}

func (a *App) drawStatus(s tcell.Screen) {
	w, h := s.Size()
	statusY := max(0, h-a.StatusLines)
	style := tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)

	label := grid.Address{Col: a.CurCol, Row: a.CurRow + 1}.String()
	raw := a.Input[[2]int{a.CurRow, a.CurCol}]
	left := fmt.Sprintf("Mode:%s  Cell:%s  %s  [%s]", a.Mode, label, raw, a.Engine.Mode())
	a.printTextFixedWidth(s, 0, statusY, left, style, w)

	second := a.Status
	if a.Mode == "insert" {
		second = "EDIT: " + a.InputBuf
	}
	a.printTextFixedWidth(s, 0, statusY+1, second, style, w)
}

func (a *App) fill(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			s.SetContent(x+dx, y+dy, ' ', nil, style)
		}
	}
}

// printPadded prints inside a cell of width wc, honouring CellPadding.
func (a *App) printPadded(s tcell.Screen, x, y int, str string, style tcell.Style, wc int) {
	inner := wc - 2*a.CellPadding
	if inner > 0 {
		a.printTextFixedWidth(s, x+a.CellPadding, y, str, style, inner)
		return
	}
	a.printTextFixedWidth(s, x, y, str, style, wc)
}

func (a *App) printTextFixedWidth(s tcell.Screen, x, y int, str string, style tcell.Style, width int) {
	runes := []rune(str)
	for i := 0; i < width; i++ {
		ch := ' '
		if i < len(runes) {
			ch = runes[i]
		}
		if x+i >= 0 && y >= 0 {
			s.SetContent(x+i, y, ch, nil, style)
		}
	}
}

func (a *App) splitLines(text string, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	out := make([]string, maxLines)
	copy(out, strings.Split(text, "\n"))
	return out
}

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	innerW := min(w-6-padding*2, 50)
	if innerW < 10 {
		return
	}
	lines := wrapText(help, innerW)
	if maxLines := h - 6 - padding*2; len(lines) > maxLines {
		lines = lines[:max(0, maxLines)]
	}
	innerH := max(len(lines), 3)

	pw := innerW + padding*2
	ph := innerH + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	style := tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorWhite)
	a.fill(s, left, top, pw, ph, style)
	a.drawBorder(s, left, top, pw, ph, style)

	for i, ln := range lines {
		a.printTextFixedWidth(s, left+padding, top+padding+i, ln, style, innerW)
	}
}

func (a *App) drawBorder(s tcell.Screen, left, top, w, h int, style tcell.Style) {
	for x := left + 1; x < left+w-1; x++ {
		s.SetContent(x, top, tcell.RuneHLine, nil, style)
		s.SetContent(x, top+h-1, tcell.RuneHLine, nil, style)
	}
	for y := top + 1; y < top+h-1; y++ {
		s.SetContent(left, y, tcell.RuneVLine, nil, style)
		s.SetContent(left+w-1, y, tcell.RuneVLine, nil, style)
	}
	s.SetContent(left, top, tcell.RuneULCorner, nil, style)
	s.SetContent(left+w-1, top, tcell.RuneURCorner, nil, style)
	s.SetContent(left, top+h-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(left+w-1, top+h-1, tcell.RuneLRCorner, nil, style)
}

// wrapText breaks s into lines of at most width runes, keeping blank lines
// between paragraphs.
func wrapText(s string, width int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := ""
		for _, word := range words {
			for runeLen(word) > width {
				if cur != "" {
					out = append(out, cur)
					cur = ""
				}
				r := []rune(word)
				out = append(out, string(r[:width]))
				word = string(r[width:])
			}
			switch {
			case cur == "":
				cur = word
			case runeLen(cur)+1+runeLen(word) <= width:
				cur += " " + word
			default:
				out = append(out, cur)
				cur = word
			}
		}
		if cur != "" {
			out = append(out, cur)
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}

// ----------------------------- Viewport -----------------------------

func (a *App) ComputeVisible(s tcell.Screen) (visibleRows, visibleCols int) {
	w, h := s.Size()
	return a.fitting(a.RowHeights, a.ViewRow, h-a.StatusLines-1), a.fitting(a.ColWidths, a.ViewCol, w-a.LeftGutter)
}

// fitting counts how many sizes starting at from fit into room, at least 1.
func (a *App) fitting(sizes []int, from, room int) int {
	room = max(room, 1)
	sum, n := 0, 0
	for i := from; i < len(sizes); i++ {
		if sum+sizes[i] > room {
			break
		}
		sum += sizes[i]
		n++
	}
	return max(n, 1)
}

func (a *App) EnsureCursorVisible(s tcell.Screen) {
	if s == nil {
		return
	}
	visibleRows, visibleCols := a.ComputeVisible(s)

	if a.CurCol < a.ViewCol {
		a.ViewCol = a.CurCol
	} else if a.CurCol >= a.ViewCol+visibleCols {
		a.ViewCol = a.CurCol - visibleCols + 1
	}
	a.ViewCol = clamp(a.ViewCol, 0, len(a.ColWidths)-1)

	if a.CurRow < a.ViewRow {
		a.ViewRow = a.CurRow
	} else if a.CurRow >= a.ViewRow+visibleRows {
		a.ViewRow = a.CurRow - visibleRows + 1
	}
	a.ViewRow = clamp(a.ViewRow, 0, len(a.RowHeights)-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
