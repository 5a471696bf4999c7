package app

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Splash shows a framed start card with the propagation mode and the main
// key bindings, then waits for any key.
func (a *App) Splash(s tcell.Screen) {
	lines := []string{
		"sheetcalc",
		"",
		"propagation: " + string(a.Engine.Mode()),
		"",
	}
	for _, l := range strings.Split(strings.TrimSpace(helpText), "\n") {
		lines = append(lines, strings.TrimSpace(l))
	}
	lines = append(lines, "", "any key to start")

	for {
		a.drawSplash(s, lines)
		switch s.PollEvent().(type) {
		case *tcell.EventKey:
			return
		case *tcell.EventResize:
			s.Sync()
		}
	}
}

func (a *App) drawSplash(s tcell.Screen, lines []string) {
	s.Clear()
	w, h := s.Size()
	boxW := 0
	for _, l := range lines {
		boxW = max(boxW, runeLen(l))
	}
	boxW = min(boxW+4, w)
	boxH := min(len(lines)+2, h)
	left := max(0, (w-boxW)/2)
	top := max(0, (h-boxH)/2)

	frame := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	a.drawBorder(s, left, top, boxW, boxH, frame)
	for i, l := range lines {
		y := top + 1 + i
		if y >= top+boxH-1 {
			break
		}
		style := tcell.StyleDefault
		if i == 0 {
			style = style.Foreground(tcell.ColorYellow).Bold(true)
		}
		x := left + max(1, (boxW-runeLen(l))/2)
		a.printTextFixedWidth(s, x, y, l, style, left+boxW-1-x)
	}
	s.HideCursor()
	s.Show()
}
