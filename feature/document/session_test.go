package document

import (
	"testing"

	"treesync/core/reconcile"
	"treesync/feature/stylesheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	s := NewSession("home")
	assert.Equal(t, "home", s.Name())

	report, ran := s.Driver().Tick()
	require.True(t, ran)
	assert.ErrorIs(t, report.Err, ErrNoView)

	html, err := s.HTML()
	require.NoError(t, err)
	assert.Empty(t, html)

	report, err = s.Apply(H("ul", li("one")))
	require.NoError(t, err)
	require.NoError(t, report.Err)
	assert.True(t, report.Mounted)

	html, err = s.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>one</li></ul>", html)

	report, err = s.Apply(H("ul", li("one")))
	require.NoError(t, err)
	assert.Zero(t, report.Stats.Total())

	s.SetView(H("ul", li("two")))
	report, ran = s.Driver().Tick()
	require.True(t, ran)
	assert.Equal(t, 1, report.Stats.Updates)

	v, ok := s.View()
	assert.True(t, ok)
	assert.Equal(t, H("ul", li("two")), v)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, s.Document().Len())
}

func TestSession_SheetFollowsView(t *testing.T) {
	s := NewSession("styled")
	red := stylesheet.Style{Decls: stylesheet.Declarations{"color": "red"}}
	blue := stylesheet.Style{Decls: stylesheet.Declarations{"color": "blue"}}

	_, err := s.Apply(reconcile.NewNode(El("div").Styled(red), reconcile.NewNode(El("p").Styled(blue))))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Sheet().Len())

	_, err = s.Apply(reconcile.NewNode(El("div").Styled(red)))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Sheet().Len())
	assert.Contains(t, s.Sheet().Rules(), red.Class())

	html, err := s.HTML()
	require.NoError(t, err)
	assert.Equal(t, `<div data-css="`+red.Class()+`"></div>`, html)
}
