package stylesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyle_Render(t *testing.T) {
	s := Style{
		Decls:  Declarations{"margin": "0", "color": "red"},
		States: map[string]Declarations{":hover": {"color": "blue"}},
		Media:  map[string]Declarations{"(max-width: 600px)": {"display": "none"}},
	}

	want := `[data-css="c"]{color:red;margin:0}` + "\n" +
		`[data-css="c"]:hover{color:blue}` + "\n" +
		`@media (max-width: 600px){[data-css="c"]{display:none}}` + "\n"
	assert.Equal(t, want, s.Render("c"))
}

func TestStyle_Class(t *testing.T) {
	a := Style{Decls: Declarations{"color": "red", "margin": "0"}}
	b := Style{Decls: Declarations{"margin": "0", "color": "red"}}
	c := Style{Decls: Declarations{"color": "blue"}}

	assert.Equal(t, a.Class(), b.Class())
	assert.NotEqual(t, a.Class(), c.Class())
	assert.Len(t, a.Class(), 17)
	assert.Equal(t, "s", a.Class()[:1])
	assert.Empty(t, Style{}.Class())
}

func TestStyle_Equal(t *testing.T) {
	a := Style{States: map[string]Declarations{":focus": {"outline": "none"}}}
	b := Style{States: map[string]Declarations{":focus": {"outline": "none"}}}
	c := Style{States: map[string]Declarations{":focus": {"outline": "1px"}}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, Style{}.Equal(Style{}))
	assert.True(t, Style{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestSheet(t *testing.T) {
	sheet := NewSheet()
	red := Style{Decls: Declarations{"color": "red"}}
	blue := Style{Decls: Declarations{"color": "blue"}}

	c1 := sheet.Add(red)
	c2 := sheet.Add(red)
	c3 := sheet.Add(blue)
	assert.Empty(t, sheet.Add(Style{}))

	assert.Equal(t, c1, c2)
	assert.NotEqual(t, c1, c3)
	assert.Equal(t, 2, sheet.Len())
	assert.Equal(t, red.Render(c1), sheet.Rules()[c1])

	bundle := sheet.Bundle()
	assert.Contains(t, bundle, Selector(c1)+"{color:red}")
	assert.Contains(t, bundle, Selector(c3)+"{color:blue}")
}
