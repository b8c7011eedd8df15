package host

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/folio-motion/dom"
)

var (
	styleBase     = tcell.StyleDefault
	styleStar     = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleNav      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleCurrent  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true).Underline(true)
	styleActive   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleMoving   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleTimeline = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleDrawn    = tcell.StyleDefault.Foreground(tcell.ColorLime).Underline(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorMaroon)
)

// styleFor maps effect classes to a cell style, latest applied effect wins
func styleFor(n *dom.Node, base tcell.Style) tcell.Style {
	switch {
	case n.HasClass(classMoving):
		return styleMoving
	case n.HasClass(classTimeline):
		return styleTimeline
	case n.HasClass(classDrawn):
		return styleDrawn
	case n.HasClass(classActive):
		return styleActive
	}
	return base
}

func (h *Host) render() {
	width, height := h.screen.Size()
	h.screen.Clear()

	if h.starfield != nil && !h.sched.ReducedMotion() {
		h.starfield.Draw(width, height, func(x, y int, r rune) {
			h.screen.SetContent(x, y, r, nil, styleStar)
		})
	}

	for _, l := range h.page.Nav {
		base := styleNav
		if l.Node.HasClass("current") {
			base = styleCurrent
		}
		h.drawText(l.X, navRow, l.W, fmt.Sprintf("[%s]", l.Page), styleFor(l.Node, base))
	}

	from, to := h.page.Visible(height)
	for i := from; i < to; i++ {
		it := h.page.Items[i]
		line := fmt.Sprintf("%-28s %-10s %-20s %s", it.Desc.ID, it.Desc.Trigger, it.Desc.Engine, it.Desc.Duration)
		h.drawText(itemPadding, h.page.RowOf(i, height), width-2*itemPadding, line, styleFor(it.Node, styleBase))
	}

	h.drawStatus(width, height)
	h.screen.Show()
}

func (h *Host) drawStatus(width, height int) {
	if height < chromeRows {
		return
	}
	mode := "full"
	switch {
	case h.sched.ReducedMotion():
		mode = "reduced"
	case h.sched.LowPowerMode():
		mode = "low-power"
	}
	// Frame count excludes the frame being drawn
	line := fmt.Sprintf(" %s  %d/%d  playing %d  queued %d  %s  #%d ",
		h.page.Key, h.page.Offset, len(h.page.Items), len(h.ctrl.Playing()), h.sched.Len(), mode, h.driver.Frames())
	style := styleStatus
	if h.lastErr != "" {
		line += " " + h.lastErr
		style = styleError
	}
	for x := 0; x < width; x++ {
		h.screen.SetContent(x, height-1, ' ', nil, style)
	}
	h.drawText(0, height-1, width, line, style)
}

func (h *Host) drawText(x, y, maxWidth int, s string, style tcell.Style) {
	if y < 0 {
		return
	}
	i := 0
	for _, r := range s {
		if i >= maxWidth {
			return
		}
		h.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
