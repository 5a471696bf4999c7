package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcalc/internal/grid"
)

func TestPutGet(t *testing.T) {
	s := New()
	_, ok := s.Get("A1")
	assert.False(t, ok)

	s.Put("A1", Record{Value: grid.Text("5")})
	s.Put("B2", Record{Formula: "A1+1", HasFormula: true, Value: grid.Number(6)})
	s.Put("A1", Record{Value: grid.Text("7")})

	rec, ok := s.Get("A1")
	require.True(t, ok)
	assert.False(t, rec.IsFormula())
	assert.Equal(t, "7", rec.Value.String())

	v, ok := s.Value("B2")
	require.True(t, ok)
	assert.True(t, v.Equal(grid.Number(6)))

	s.Put("C3", Record{HasFormula: true, Value: grid.NotAvailable})
	rec, _ = s.Get("C3")
	assert.True(t, rec.IsFormula(), "empty body is still a formula")

	assert.Equal(t, []string{"A1", "B2", "C3"}, s.Labels())
	assert.Equal(t, 3, s.Len())
}

func TestSetValue(t *testing.T) {
	s := New()
	s.SetValue("C1", grid.Number(1))
	assert.Zero(t, s.Len())

	s.Put("C1", Record{Formula: "A1", HasFormula: true, Value: grid.Number(1)})
	s.SetValue("C1", grid.Number(2))
	rec, _ := s.Get("C1")
	assert.Equal(t, "A1", rec.Formula)
	assert.True(t, rec.IsFormula())
	assert.True(t, rec.Value.Equal(grid.Number(2)))
}

func TestClear(t *testing.T) {
	s := New()
	s.Put("A1", Record{Value: grid.Text("x")})
	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Labels())
	_, ok := s.Value("A1")
	assert.False(t, ok)
}
