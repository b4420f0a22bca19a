package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/commit-swipe/internal/card"
	"github.com/example/commit-swipe/internal/models"
)

const (
	cardWidth = 44

	// outer padding of the whole view, in cells
	padY = 1
	padX = 2
)

func (m model) View() string {
	s := m.s
	wrap := lipgloss.NewStyle().Padding(padY, padX)

	var body string
	switch s.scr {
	case screenList:
		body = m.theme.Card.UnsetWidth().Render(s.list.View()) + "\n" +
			m.theme.Help.Render("↑/↓ navigate • enter open • / filter • esc back")
	case screenInfo:
		body = m.viewInfo()
	case screenChat:
		body = m.viewChat()
	default:
		body = m.viewDeck()
	}
	if s.match != nil {
		body = m.viewMatch()
	}

	out := m.viewHeader() + "\n\n" + body
	if s.toast != "" {
		out += "\n" + m.theme.Toast.Render(s.toast)
	}
	return wrap.Render(out)
}

func (m model) viewHeader() string {
	s := m.s
	title := m.theme.Title.Render("commit-swipe")
	who := m.theme.Subtitle.Render("signed out")
	if s.me != nil {
		who = m.theme.Subtitle.Render(s.me.Name + " · " + card.AvatarURL(s.me.Name, s.me.Image))
	}
	matches := "matches"
	if s.badge != "" {
		matches += " " + m.theme.Badge.Render(s.badge)
	}
	return title + "  " + who + "\n" + m.theme.Help.Render("[m] ") + matches
}

func (m model) viewDeck() string {
	s := m.s
	if !s.loaded {
		return m.theme.Subtitle.Render("Loading profiles...")
	}
	if s.view.Terminal {
		return m.theme.Card.Render(
			m.theme.Title.Render("No more profiles") + "\n\n" +
				"Check back later for new developers.\n\n" +
				m.theme.Help.Render("r refresh • m matches • q quit"),
		)
	}

	var b strings.Builder
	if fg := s.view.Foreground; fg != nil {
		b.WriteString(m.renderStamps(fg))
		b.WriteString("\n")
		b.WriteString(m.shift(fg, m.renderCard(fg)))
		b.WriteString("\n")
	}
	if pk := s.view.Peek; pk != nil {
		b.WriteString(m.theme.Peek.Render("Next: " + pk.Name + "  " + pk.Role))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Help.Render("drag the card or ←/h pass • →/l like • i info • r refresh • w/s likes • n nearby • q quit"))
	return b.String()
}

func (m model) renderCard(c *card.Card) string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(c.Name))
	b.WriteString("  ")
	b.WriteString(m.theme.Tiers[c.Tier].Render(c.ScoreLabel()))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(c.Role))
	if d := c.DistanceLabel(); d != "" {
		b.WriteString(m.theme.Subtitle.Render(" · " + d))
	}
	b.WriteString("\n\n")
	if len(c.Tags) > 0 {
		tags := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			tags = append(tags, m.theme.Tag.Render(t))
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n\n")
	}
	b.WriteString(c.Bio)
	return m.theme.Card.Render(b.String())
}

// shift moves the rendered card horizontally by its translate offset. The
// terminal cannot rotate text, so rotation only shows in the stamp line.
func (m model) shift(c *card.Card, rendered string) string {
	return lipgloss.NewStyle().MarginLeft(m.margin(c)).Render(rendered)
}

func (m model) margin(c *card.Card) int {
	cols := int(math.Round(c.Offset.TranslateX / m.ppc))
	base := 0
	if m.width > 0 {
		base = max((m.width-cardWidth-10)/2, 0)
	}
	return max(base+cols, 0)
}

// cellRect is a screen area in terminal cells.
type cellRect struct{ x, y, w, h int }

func (r cellRect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// foregroundRect locates the foreground card the way View lays it out:
// padding, the header, one blank line, the stamp line, then the card.
func (m model) foregroundRect() (cellRect, bool) {
	s := m.s
	fg := s.view.Foreground
	if s.scr != screenDeck || !s.loaded || s.view.Terminal || fg == nil {
		return cellRect{}, false
	}
	rendered := m.renderCard(fg)
	top := padY + lipgloss.Height(m.viewHeader()) + 1 + lipgloss.Height(m.renderStamps(fg))
	return cellRect{
		x: padX + m.margin(fg),
		y: top,
		w: lipgloss.Width(rendered),
		h: lipgloss.Height(rendered),
	}, true
}

func (m model) renderStamps(c *card.Card) string {
	parts := []string{}
	if st := stamp(m.theme.Positive, c.Positive); st != "" {
		parts = append(parts, st)
	}
	if st := stamp(m.theme.Negative, c.Negative); st != "" {
		parts = append(parts, st)
	}
	if c.Offset.Rotation != 0 {
		parts = append(parts, m.theme.Help.Render(fmt.Sprintf("tilt %+.0f°", c.Offset.Rotation)))
	}
	return strings.Join(parts, " ")
}

// stamp fades an indicator in with its opacity; an invisible one renders empty.
func stamp(style lipgloss.Style, ind card.Indicator) string {
	switch {
	case ind.Opacity <= 0:
		return ""
	case ind.Opacity < 0.5:
		return style.Faint(true).Render(ind.Label)
	default:
		return style.Render(ind.Label)
	}
}

func (m model) viewInfo() string {
	p := m.s.info
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(p.Name))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(p.Role))
	b.WriteString("\n\n")
	b.WriteString(p.Bio)
	if len(p.Stack) > 0 {
		b.WriteString("\n\nStack: ")
		b.WriteString(strings.Join(p.Stack, ", "))
	}
	b.WriteString("\n\nAvatar: ")
	b.WriteString(card.AvatarURL(p.Name, p.Image))
	if p.Distance != nil {
		b.WriteString(fmt.Sprintf("\nDistance: %d km", *p.Distance))
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render("esc back"))
	return m.theme.Card.Render(b.String())
}

func (m model) viewChat() string {
	s := m.s
	if s.chatWith == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Chat with " + s.chatWith.Name))
	b.WriteString("\n\n")
	if len(s.chat) == 0 {
		b.WriteString(m.theme.Subtitle.Render("No messages yet."))
		b.WriteString("\n")
	}
	for _, msg := range s.chat {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.input.View())
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("enter send • esc back"))
	return b.String()
}

func (m model) renderMessage(msg models.Message) string {
	if msg.FromMe() {
		return m.theme.Mine.Render("you: " + msg.Text)
	}
	return m.theme.Theirs.Render(m.s.chatWith.Name + ": " + msg.Text)
}

func (m model) viewMatch() string {
	mt := m.s.match
	return m.theme.Modal.Render(
		m.theme.Title.Render("It's a match!") + "\n\n" +
			fmt.Sprintf("You and %s liked each other.", mt.FirstName) + "\n\n" +
			m.theme.Help.Render("enter start chat • esc keep swiping"),
	)
}
