package engine

import (
	"bytes"
	"log"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcalc/internal/calc"
	"sheetcalc/internal/grid"
)

type recorder struct {
	mu   sync.Mutex
	seen []Change
}

func (r *recorder) CellPropagated(label string, v grid.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, Change{Label: label, Value: v})
}

func (r *recorder) labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, c := range r.seen {
		out = append(out, c.Label)
	}
	return out
}

func newEngine(t *testing.T, mode Mode) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts := DefaultOptions()
	opts.Mode = mode
	opts.Renderer = rec
	return New(opts), rec
}

func mustSet(t *testing.T, e *Engine, label, raw string) grid.Value {
	t.Helper()
	v, err := e.SetCell(label, raw)
	require.NoError(t, err)
	return v
}

func bothModes(t *testing.T, fn func(t *testing.T, mode Mode)) {
	for _, mode := range []Mode{ModeGraph, ModeLegacy} {
		t.Run(string(mode), func(t *testing.T) { fn(t, mode) })
	}
}

func TestLiteralCommit(t *testing.T) {
	bothModes(t, func(t *testing.T, mode Mode) {
		e, _ := newEngine(t, mode)
		v := mustSet(t, e, "A1", "5")
		assert.Equal(t, grid.Text("5"), v)
		assert.Equal(t, "5", e.Value("A1").String())

		rec, ok := e.Cell("A1")
		require.True(t, ok)
		assert.False(t, rec.IsFormula())

		mustSet(t, e, "A2", "hello world")
		assert.Equal(t, grid.Text("hello world"), e.Value("A2"))
	})
}

func TestBareEqualsIsFormula(t *testing.T) {
	bothModes(t, func(t *testing.T, mode Mode) {
		e, _ := newEngine(t, mode)
		v := mustSet(t, e, "A1", "=")
		assert.Equal(t, grid.NotAvailable, v)

		rec, ok := e.Cell("A1")
		require.True(t, ok)
		assert.True(t, rec.IsFormula())
		assert.Empty(t, rec.Formula)
	})
}

func TestFormulaWithReferences(t *testing.T) {
	bothModes(t, func(t *testing.T, mode Mode) {
		e, _ := newEngine(t, mode)
		mustSet(t, e, "A1", "5")
		mustSet(t, e, "A2", "3")
		v := mustSet(t, e, "A3", "=a1+A2")
		assert.True(t, v.Equal(grid.Number(8)))

		rec, _ := e.Cell("A3")
		assert.Equal(t, "A1+A2", rec.Formula)
	})
}

func TestRangeFunction(t *testing.T) {
	bothModes(t, func(t *testing.T, mode Mode) {
		e, _ := newEngine(t, mode)
		mustSet(t, e, "A1", "1")
		mustSet(t, e, "A2", "2")
		mustSet(t, e, "A3", "3")
		assert.True(t, mustSet(t, e, "B1", "=SUM(A1:A3)").Equal(grid.Number(6)))
	})
}

func TestUnknownFunction(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = log.New(&buf, "", 0)
	e := New(opts)

	v, err := e.SetCell("C1", "=FOO(A1:A2)")
	require.NoError(t, err)
	assert.Equal(t, grid.NotAvailable, v)
	assert.Equal(t, grid.NotAvailable, e.Value("C1"))
	assert.Contains(t, buf.String(), "FOO")
}

func TestPropagation(t *testing.T) {
	bothModes(t, func(t *testing.T, mode Mode) {
		e, rec := newEngine(t, mode)
		mustSet(t, e, "A1", "5")
		mustSet(t, e, "A2", "3")
		mustSet(t, e, "A3", "=A1+A2")
		require.True(t, e.Value("A3").Equal(grid.Number(8)))

		rec.seen = nil
		mustSet(t, e, "A1", "10")
		assert.True(t, e.Value("A3").Equal(grid.Number(13)))
		require.Len(t, rec.seen, 1)
		assert.Equal(t, "A3", rec.seen[0].Label)
		assert.True(t, rec.seen[0].Value.Equal(grid.Number(13)))
	})
}

func TestIdempotentCommit(t *testing.T) {
	bothModes(t, func(t *testing.T, mode Mode) {
		e, _ := newEngine(t, mode)
		mustSet(t, e, "A1", "2")
		first := mustSet(t, e, "B1", "=A1*4")
		second := mustSet(t, e, "B1", "=A1*4")
		assert.True(t, first.Equal(second))
		assert.True(t, e.Value("B1").Equal(grid.Number(8)))
	})
}

func TestMissingReference(t *testing.T) {
	e, _ := newEngine(t, ModeGraph)
	assert.True(t, mustSet(t, e, "A1", "=Z99+1").Equal(grid.Number(1)))
	assert.Equal(t, grid.Empty, e.Value("Q7"))
}

func TestMalformedAddress(t *testing.T) {
	e, _ := newEngine(t, ModeGraph)
	_, err := e.SetCell("1A", "5")
	assert.ErrorIs(t, err, grid.ErrMalformedAddress)
	assert.Empty(t, e.Labels())
}

func TestNonNumericSentinels(t *testing.T) {
	e, _ := newEngine(t, ModeGraph)
	mustSet(t, e, "A1", "abc")
	assert.Equal(t, grid.NotAvailable, mustSet(t, e, "B1", "=A1+1"))
	// SUM over text poisons to NaN, which displays empty
	assert.Equal(t, grid.Empty, mustSet(t, e, "B2", "=SUM(A1:A2)"))
	assert.Equal(t, grid.Empty, mustSet(t, e, "B3", "=0/0"))
}

func TestSkipNaNPolicy(t *testing.T) {
	opts := DefaultOptions()
	opts.NaNPolicy = calc.NaNSkip
	e := New(opts)
	mustSet(t, e, "A1", "abc")
	mustSet(t, e, "A2", "4")
	assert.True(t, mustSet(t, e, "B1", "=SUM(A1:A2)").Equal(grid.Number(4)))
}

func TestGraphCascades(t *testing.T) {
	e, rec := newEngine(t, ModeGraph)
	mustSet(t, e, "A1", "1")
	mustSet(t, e, "B1", "=A1+1")
	mustSet(t, e, "C1", "=B1+1")
	mustSet(t, e, "D1", "=SUM(A1:C1)")

	rec.seen = nil
	mustSet(t, e, "A1", "10")
	assert.True(t, e.Value("B1").Equal(grid.Number(11)))
	assert.True(t, e.Value("C1").Equal(grid.Number(12)))
	assert.True(t, e.Value("D1").Equal(grid.Number(33)))
	assert.Equal(t, []string{"B1", "C1", "D1"}, rec.labels())
}

func TestLegacyDoesNotCascade(t *testing.T) {
	e, _ := newEngine(t, ModeLegacy)
	mustSet(t, e, "A1", "1")
	mustSet(t, e, "B1", "=A1+1")
	mustSet(t, e, "C1", "=B1+1")

	mustSet(t, e, "A1", "10")
	assert.True(t, e.Value("B1").Equal(grid.Number(11)))
	// C1 still holds the value computed from the old B1
	assert.True(t, e.Value("C1").Equal(grid.Number(3)))
}

func TestLegacySubstringFalsePositive(t *testing.T) {
	e, rec := newEngine(t, ModeLegacy)
	mustSet(t, e, "B1", "=A10+1")
	rec.seen = nil
	mustSet(t, e, "A1", "7")
	assert.Equal(t, []string{"B1"}, rec.labels())

	g, grec := newEngine(t, ModeGraph)
	mustSet(t, g, "B1", "=A10+1")
	grec.seen = nil
	mustSet(t, g, "A1", "7")
	assert.Empty(t, grec.labels())
}

func TestFormulaReadsPreviousSelfValue(t *testing.T) {
	e, _ := newEngine(t, ModeGraph)
	mustSet(t, e, "A1", "4")
	assert.True(t, mustSet(t, e, "A1", "=A1*2").Equal(grid.Number(8)))
}

func TestLiteralOverFormulaDropsEdges(t *testing.T) {
	e, rec := newEngine(t, ModeGraph)
	mustSet(t, e, "B1", "=A1+1")
	mustSet(t, e, "B1", "plain")
	rec.seen = nil
	mustSet(t, e, "A1", "3")
	assert.Empty(t, rec.labels())
	assert.Equal(t, grid.Text("plain"), e.Value("B1"))
}

func TestPropagateAndEvaluate(t *testing.T) {
	e, rec := newEngine(t, ModeGraph)
	mustSet(t, e, "A1", "2")
	mustSet(t, e, "B1", "=A1*3")
	rec.seen = nil

	changes := e.Propagate("A1")
	require.Len(t, changes, 1)
	assert.Equal(t, []string{"B1"}, rec.labels())

	assert.True(t, e.Evaluate("B1+A1").Equal(grid.Number(8)))
	_, ok := e.Cell("Z1")
	assert.False(t, ok)
}

func TestRendererMayReadEngine(t *testing.T) {
	e := New(DefaultOptions())
	var got []string
	e.SetRenderer(RendererFunc(func(label string, v grid.Value) {
		// reading back must not deadlock
		got = append(got, label+"="+e.Value(label).String())
	}))
	mustSet(t, e, "B1", "=A1+1")
	mustSet(t, e, "A1", "1")
	assert.Equal(t, []string{"B1=2"}, got)
}

func TestClear(t *testing.T) {
	e, rec := newEngine(t, ModeGraph)
	mustSet(t, e, "B1", "=A1+1")
	e.Clear()
	assert.Empty(t, e.Labels())
	rec.seen = nil
	mustSet(t, e, "A1", "1")
	assert.Empty(t, rec.labels())
}

func TestColumnLabels(t *testing.T) {
	e := New(DefaultOptions())
	labels := e.ColumnLabels(28)
	assert.Equal(t, "A", labels[0])
	assert.Equal(t, "Z", labels[25])
	assert.Equal(t, "AA", labels[26])
	assert.Equal(t, "AB", labels[27])
}

func TestConcurrentEditsStayConsistent(t *testing.T) {
	e := New(DefaultOptions())
	mustSet(t, e, "B1", "=A1+A2")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.SetCell("A1", "1")
			_, _ = e.SetCell("A2", "2")
		}()
	}
	wg.Wait()
	assert.True(t, e.Value("B1").Equal(grid.Number(3)))
}

func TestExponentLiteralTracksReference(t *testing.T) {
	e, rec := newEngine(t, ModeGraph)
	mustSet(t, e, "E3", "5")
	// the evaluator reads 1E3 as the text "1" followed by cell E3
	require.True(t, mustSet(t, e, "B1", "=1E3+1").Equal(grid.Number(16)))

	mustSet(t, e, "E3", "7")
	assert.True(t, e.Value("B1").Equal(grid.Number(18)))
	assert.Contains(t, rec.labels(), "B1")
}

func TestNotificationsFollowCommitOrder(t *testing.T) {
	e, rec := newEngine(t, ModeGraph)
	mustSet(t, e, "B1", "=A1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = e.SetCell("A1", strconv.Itoa(n))
		}(i)
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.seen, 50)
	last := rec.seen[len(rec.seen)-1]
	assert.Equal(t, "B1", last.Label)
	assert.True(t, last.Value.Equal(e.Value("B1")), "last delivery %v, stored %v", last.Value, e.Value("B1"))
}

func TestModeDefaults(t *testing.T) {
	assert.Equal(t, ModeGraph, New(Options{}).Mode())
	assert.Equal(t, ModeLegacy, New(Options{Mode: ModeLegacy}).Mode())
}
