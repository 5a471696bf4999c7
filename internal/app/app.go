package app

import (
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"sheetcalc/internal/engine"
	"sheetcalc/internal/grid"
	"sheetcalc/internal/storage"

	"github.com/gdamore/tcell/v2"
)

// Config holds the presentation settings of the terminal grid.
type Config struct {
	Cols          int
	Rows          int
	DefaultWidth  int
	RefreshClears bool // refresh also empties the engine's cell store
}

func DefaultConfig() Config {
	return Config{Cols: 8, Rows: 8, DefaultWidth: 16}
}

type App struct {
	// layout
	LeftGutter    int
	StatusLines   int
	DefaultWidth  int
	DefaultHeight int

	CellPadding int

	ColWidths  []int
	RowHeights []int

	// Input is what the user typed per [row, col]; Shown is what the grid displays.
	Engine *engine.Engine
	Input  map[[2]int]string
	Shown  map[[2]int]string

	// cursor / view
	CurRow  int
	CurCol  int
	ViewRow int
	ViewCol int

	// UI state
	Mode     string // normal | insert
	InputBuf string
	Status   string
	Quit     bool

	MoveAfterEnter    bool
	SelectAllOnEdit   bool
	ReplaceOnNextRune bool
	RefreshClears     bool

	HelpVisible bool

	Logger *log.Logger
}

// NewApp builds the grid around e and registers itself as e's renderer.
func NewApp(e *engine.Engine, cfg Config, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.DefaultWidth < 4 {
		cfg.DefaultWidth = DefaultConfig().DefaultWidth
	}
	a := &App{
		LeftGutter:      5,
		StatusLines:     2,
		DefaultWidth:    cfg.DefaultWidth,
		DefaultHeight:   1,
		CellPadding:     1,
		Engine:          e,
		Input:           map[[2]int]string{},
		Shown:           map[[2]int]string{},
		Mode:            "normal",
		MoveAfterEnter:  true,
		SelectAllOnEdit: true,
		RefreshClears:   cfg.RefreshClears,
		Logger:          logger,
	}
	a.EnsureColExists(max(cfg.Cols, 1) - 1)
	a.EnsureRowExists(max(cfg.Rows, 1) - 1)
	e.SetRenderer(a)
	return a
}

// ----------------------------- Engine glue -----------------------------

// Commit pushes raw into the engine for the cell at (r, c) and shows the
// returned value.
func (a *App) Commit(r, c int, raw string) {
	key := [2]int{r, c}
	label := grid.Address{Col: c, Row: r + 1}.String()
	v, err := a.Engine.SetCell(label, raw)
	if err != nil {
		a.Logger.Printf("app: commit %s: %v", label, err)
		a.Status = err.Error()
		return
	}
	a.Input[key] = raw
	a.Shown[key] = FormatValue(v)
	a.EnsureColExists(c)
	a.EnsureRowExists(r)
}

// CellPropagated updates a cell the engine recomputed on its own.
func (a *App) CellPropagated(label string, v grid.Value) {
	addr, err := grid.ParseAddress(label)
	if err != nil {
		return
	}
	a.Shown[[2]int{addr.Row - 1, addr.Col}] = FormatValue(v)
}

// Refresh blanks every displayed cell. The engine keeps its records unless
// RefreshClears is set, so stale formulas can still be recomputed later.
func (a *App) Refresh() {
	a.Input = map[[2]int]string{}
	a.Shown = map[[2]int]string{}
	if a.RefreshClears {
		a.Engine.Clear()
	}
	a.Status = "refreshed"
}

// GetDisplayText returns the text drawn in cell (r, c).
func (a *App) GetDisplayText(r, c int) string {
	return a.Shown[[2]int{r, c}]
}

// FormatValue renders numbers without trailing zeros and at most six decimals.
func FormatValue(v grid.Value) string {
	if !v.IsNumber() {
		return v.String()
	}
	f := v.Float()
	if math.IsNaN(f) {
		return ""
	}
	if math.Abs(f-math.Round(f)) < 1e-9 && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	if a.Mode == "insert" {
		a.handleInsert(ev)
		return
	}

	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	mod := ev.Modifiers()
	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.Quit = true
	case tcell.KeyUp:
		if mod&tcell.ModCtrl != 0 {
			if a.RowHeights[a.CurRow] > 1 {
				a.RowHeights[a.CurRow]--
			}
		} else if a.CurRow > 0 {
			a.CurRow--
		}
	case tcell.KeyDown:
		if mod&tcell.ModCtrl != 0 {
			a.RowHeights[a.CurRow]++
		} else {
			a.CurRow++
			a.EnsureRowExists(a.CurRow)
		}
	case tcell.KeyLeft:
		if mod&tcell.ModCtrl != 0 {
			if a.ColWidths[a.CurCol] > 4 {
				a.ColWidths[a.CurCol]--
			}
		} else if a.CurCol > 0 {
			a.CurCol--
		}
	case tcell.KeyRight:
		if mod&tcell.ModCtrl != 0 {
			a.ColWidths[a.CurCol]++
		} else {
			a.CurCol++
			a.EnsureColExists(a.CurCol)
		}
	case tcell.KeyPgUp:
		vr, _ := a.ComputeVisible(s)
		a.ViewRow = max(0, a.ViewRow-vr)
	case tcell.KeyPgDn:
		vr, _ := a.ComputeVisible(s)
		a.ViewRow = min(a.ViewRow+vr, max(0, len(a.RowHeights)-1))
	case tcell.KeyHome:
		a.ViewCol = 0
		a.ViewRow = 0
	case tcell.KeyEnd:
		a.ViewCol = max(0, len(a.ColWidths)-1)
		a.ViewRow = max(0, len(a.RowHeights)-1)
	case tcell.KeyF2:
		a.EnsureRowExists(len(a.RowHeights))
	case tcell.KeyF3:
		a.EnsureColExists(len(a.ColWidths))
	case tcell.KeyF5:
		a.Refresh()
	case tcell.KeyEnter:
		a.startEdit()
	default:
		switch ev.Rune() {
		case 'q':
			a.Quit = true
		case 'i':
			a.startEdit()
		case ':':
			if command, ok := a.PopupInput(s, ":", ""); ok {
				a.ExecuteCommand(command)
			}
		case '=':
			if value, ok := a.PopupInput(s, "", "="); ok {
				a.Commit(a.CurRow, a.CurCol, value)
			}
		case '?':
			a.HelpVisible = true
		}
	}
}

func (a *App) startEdit() {
	a.Mode = "insert"
	a.InputBuf = a.Input[[2]int{a.CurRow, a.CurCol}]
	a.ReplaceOnNextRune = a.SelectAllOnEdit
}

func (a *App) handleInsert(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc:
		a.Mode = "normal"
		a.InputBuf = ""
		a.ReplaceOnNextRune = false
	case tcell.KeyEnter:
		a.Commit(a.CurRow, a.CurCol, a.InputBuf)
		a.Mode = "normal"
		a.InputBuf = ""
		a.ReplaceOnNextRune = false
		// move after enter unless Ctrl held
		if ev.Modifiers()&tcell.ModCtrl == 0 && a.MoveAfterEnter {
			a.CurRow++
			a.EnsureRowExists(a.CurRow)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if a.ReplaceOnNextRune {
			a.InputBuf = ""
		} else if n := len([]rune(a.InputBuf)); n > 0 {
			a.InputBuf = string([]rune(a.InputBuf)[:n-1])
		}
		a.ReplaceOnNextRune = false
	default:
		r := ev.Rune()
		if r == 0 {
			return
		}
		if a.ReplaceOnNextRune {
			a.InputBuf = string(r)
			a.ReplaceOnNextRune = false
		} else {
			a.InputBuf += string(r)
		}
	}
}

// ----------------------------- Commands -----------------------------

func (a *App) ExecuteCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	switch parts[0] {
	case "q", "quit":
		a.Quit = true
	case "cw":
		if len(parts) >= 2 {
			if v, err := strconv.Atoi(parts[1]); err == nil && v >= 4 {
				for i := range a.ColWidths {
					a.ColWidths[i] = v
				}
			}
		}
	case "rh":
		if len(parts) >= 2 {
			if v, err := strconv.Atoi(parts[1]); err == nil && v >= 1 {
				for i := range a.RowHeights {
					a.RowHeights[i] = v
				}
			}
		}
	case "refresh":
		a.Refresh()
	case "w":
		if len(parts) < 2 {
			a.Status = "usage: w FILE"
			return
		}
		if err := storage.Save(parts[1], a.ShownByLabel()); err != nil {
			a.Logger.Printf("app: save %s: %v", parts[1], err)
			a.Status = "save failed: " + err.Error()
			return
		}
		a.Status = "wrote " + parts[1]
	case "o":
		if len(parts) < 2 {
			a.Status = "usage: o FILE"
			return
		}
		edits, err := storage.Load(parts[1])
		if err != nil {
			a.Logger.Printf("app: load %s: %v", parts[1], err)
			a.Status = "load failed: " + err.Error()
			return
		}
		for _, ed := range edits {
			addr, err := grid.ParseAddress(ed.Label)
			if err != nil {
				continue
			}
			a.Commit(addr.Row-1, addr.Col, ed.Raw)
		}
		a.CurRow, a.CurCol, a.ViewRow, a.ViewCol = 0, 0, 0, 0
		a.Status = "loaded " + parts[1]
	default:
		a.Status = "unknown command: " + parts[0]
	}
}

// ShownByLabel returns the displayed text of every non-empty cell keyed by label.
func (a *App) ShownByLabel() map[string]string {
	out := make(map[string]string, len(a.Shown))
	for k, v := range a.Shown {
		if v == "" {
			continue
		}
		out[grid.Address{Col: k[1], Row: k[0] + 1}.String()] = v
	}
	return out
}

// ----------------------------- Helpers -----------------------------

func (a *App) EnsureColExists(idx int) {
	for len(a.ColWidths) <= idx {
		a.ColWidths = append(a.ColWidths, a.DefaultWidth)
	}
}

func (a *App) EnsureRowExists(idx int) {
	for len(a.RowHeights) <= idx {
		a.RowHeights = append(a.RowHeights, a.DefaultHeight)
	}
}
