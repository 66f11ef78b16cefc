package listdemo

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/presenter/pkg/core"
)

// item is the state of one list row.
type item struct {
	Index int
	Title string
	Ticks int
}

var (
	boundStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")).Width(8)
)

// cell is a pooled row view. It renders to a string on every update.
type cell struct {
	id       string
	rendered string
	applies  int
}

func newCell(id string) *cell {
	return &cell{id: id}
}

func (c *cell) ReuseID() string {
	return c.id
}

func (c *cell) Apply(it item, ctx core.ViewUpdateContext) {
	c.applies++
	style := changedStyle
	if ctx.Has(core.ReasonBind) {
		style = boundStyle
	}
	text := fmt.Sprintf("%-10s ticks=%d", it.Title, it.Ticks)
	c.rendered = lipgloss.JoinHorizontal(lipgloss.Top, idStyle.Render(c.id), style.Render(text))
}
