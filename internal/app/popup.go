package app

import (
	"github.com/gdamore/tcell/v2"
)

const maxPopupInput = 4096

// PopupInput shows a one-line modal prompt over the grid. It returns the
// entered text and true on Enter, or "" and false on Esc.
func (a *App) PopupInput(s tcell.Screen, prompt, initial string) (string, bool) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorReset)

	promptRunes := []rune(prompt)
	buf := []rune(initial)
	pos := len(buf)

	var left, top, boxW int
	const boxH = 3
	place := func() {
		w, h := s.Size()
		contentW := min(max(40, len(promptRunes)+len(buf)+2), w-4)
		boxW = contentW + 4
		left = (w - boxW) / 2
		top = (h - boxH) / 2
	}

	redraw := func() {
		a.Draw(s)
		a.fill(s, left, top, boxW, boxH, style)
		a.drawBorder(s, left, top, boxW, boxH, style)

		x := left + 2
		y := top + 1
		for i, r := range promptRunes {
			s.SetContent(x+i, y, r, nil, style)
		}
		x += len(promptRunes) + 1

		field := max(boxW-5-len(promptRunes), 1)
		start := 0
		if pos > field {
			start = pos - field
		}
		end := min(len(buf), start+field)
		a.printTextFixedWidth(s, x, y, string(buf[start:end]), style, field)
		s.ShowCursor(x+pos-start, y)
		s.Show()
	}

	finish := func(text string, ok bool) (string, bool) {
		s.HideCursor()
		a.Draw(s)
		return text, ok
	}

	place()
	redraw()
	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEsc:
				return finish("", false)
			case tcell.KeyEnter:
				return finish(string(buf), true)
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if pos > 0 {
					buf = append(buf[:pos-1], buf[pos:]...)
					pos--
				}
			case tcell.KeyDelete:
				if pos < len(buf) {
					buf = append(buf[:pos], buf[pos+1:]...)
				}
			case tcell.KeyLeft:
				pos = max(pos-1, 0)
			case tcell.KeyRight:
				pos = min(pos+1, len(buf))
			case tcell.KeyHome:
				pos = 0
			case tcell.KeyEnd:
				pos = len(buf)
			default:
				if r := ev.Rune(); r != 0 && len(buf) < maxPopupInput {
					buf = append(buf[:pos], append([]rune{r}, buf[pos:]...)...)
					pos++
				}
			}
		case *tcell.EventResize:
			s.Sync()
			place()
		}
		redraw()
	}
}
