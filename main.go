package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"sheetcalc/internal/app"
	"sheetcalc/internal/calc"
	"sheetcalc/internal/engine"
	"sheetcalc/internal/grid"
	"sheetcalc/internal/storage"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
)

var (
	legacy        bool
	skipNaN       bool
	refreshClears bool
	cols          int
	rows          int
	width         int
	logPath       string
	noSplash      bool
	outputPath    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetcalc",
		Short: "Terminal spreadsheet with formula recalculation",
		Args:  cobra.NoArgs,
		RunE:  runGrid,
	}
	rootCmd.PersistentFlags().BoolVar(&legacy, "legacy", false, "find dependents by substring match, one level deep")
	rootCmd.PersistentFlags().BoolVar(&skipNaN, "skip-nan", false, "range functions ignore non-numeric cells instead of yielding NaN")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "append diagnostics to this file")
	rootCmd.Flags().BoolVar(&refreshClears, "refresh-clears", false, "refresh also empties the cell store")
	rootCmd.Flags().IntVar(&cols, "cols", app.DefaultConfig().Cols, "initial column count")
	rootCmd.Flags().IntVar(&rows, "rows", app.DefaultConfig().Rows, "initial row count")
	rootCmd.Flags().IntVar(&width, "width", app.DefaultConfig().DefaultWidth, "default column width")
	rootCmd.Flags().BoolVar(&noSplash, "no-splash", false, "skip the start screen")

	replayCmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Apply the cells of a CSV or XLSX file in row-major order and print the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write values to a CSV or XLSX file instead of stdout")
	rootCmd.AddCommand(replayCmd)
	return rootCmd
}

func newLogger(fallback io.Writer) (*log.Logger, func(), error) {
	if logPath == "" {
		return log.New(fallback, "sheetcalc: ", log.LstdFlags), func() {}, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return log.New(f, "sheetcalc: ", log.LstdFlags), func() { f.Close() }, nil
}

func engineOptions(logger *log.Logger) engine.Options {
	opts := engine.DefaultOptions()
	opts.Logger = logger
	if legacy {
		opts.Mode = engine.ModeLegacy
	}
	if skipNaN {
		opts.NaNPolicy = calc.NaNSkip
	}
	return opts
}

func runGrid(cmd *cobra.Command, args []string) error {
	// the screen owns the terminal, so diagnostics only go to --log
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	e := engine.New(engineOptions(logger))
	a := app.NewApp(e, app.Config{
		Cols:          cols,
		Rows:          rows,
		DefaultWidth:  width,
		RefreshClears: refreshClears,
	}, logger)

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("cannot create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("cannot init screen: %w", err)
	}
	defer s.Fini()

	s.EnableMouse()
	s.Clear()
	if !noSplash {
		a.Splash(s)
	}

	for !a.Quit {
		a.EnsureCursorVisible(s)
		a.Draw(s)
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			a.HandleKeyEvent(s, ev)
		case *tcell.EventResize:
			s.Sync()
		}
	}
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	edits, err := storage.Load(args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	e := engine.New(engineOptions(logger))
	for _, ed := range edits {
		if _, err := e.SetCell(ed.Label, ed.Raw); err != nil {
			logger.Printf("skip %s: %v", ed.Label, err)
		}
	}

	values := map[string]string{}
	for _, label := range e.Labels() {
		values[label] = app.FormatValue(e.Value(label))
	}
	if outputPath != "" {
		return storage.Save(outputPath, values)
	}

	labels := e.Labels()
	sort.Slice(labels, func(i, j int) bool {
		a, _ := grid.ParseAddress(labels[i])
		b, _ := grid.ParseAddress(labels[j])
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	out := cmd.OutOrStdout()
	for _, label := range labels {
		fmt.Fprintf(out, "%s\t%s\n", label, values[label])
	}
	return nil
}
