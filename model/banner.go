package model

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/maya-advisor/maya-tui/msg"
	"github.com/maya-advisor/maya-tui/style"
)

// BannerModel renders the one-line header:
//
//	MAYA · business advisor · ● online
//
// It is populated from the health check result.
type BannerModel struct {
	online  bool
	checked bool
	detail  string
	url     string
}

// NewBanner returns a BannerModel for the backend at url.
func NewBanner(url string) BannerModel {
	return BannerModel{url: url}
}

// SetHealth populates the banner from a HealthResult message.
func (m *BannerModel) SetHealth(h msg.HealthResult) {
	m.checked = true
	m.online = h.Err == nil
	m.detail = h.Message
}

// Online reports whether the last health check succeeded.
func (m BannerModel) Online() bool { return m.online }

// View renders the banner line.
func (m BannerModel) View() string {
	sep := lipgloss.NewStyle().Foreground(style.Muted).Render(" · ")

	title := style.BannerTitle.Render("MAYA")
	sub := style.BannerDetail.Render("business advisor")

	var status string
	switch {
	case !m.checked:
		status = style.Faint.Render("○ connecting to " + m.url)
	case m.online:
		status = style.Online.Render("● online")
	default:
		status = style.Offline.Render("● offline") + style.Faint.Render(" retrying…")
	}
	return title + sep + sub + sep + status
}
