package app

import (
	"fmt"
	"strings"

	"platefinder/cmd/plate/ui"
	"platefinder/internal/router"
)

// View renders the whole frame: nav bar, the single visible page, the
// status line (busy indicator and toast) and the key hints.
func (m *Model) View() string {
	if !m.ready {
		return "Starting platefinder..."
	}

	var b strings.Builder
	b.WriteString(m.renderNav())
	b.WriteString("\n\n")

	switch m.router.Current() {
	case router.Home:
		b.WriteString(m.renderHome())
	case router.Login:
		b.WriteString(m.renderLogin())
	case router.Register:
		b.WriteString(m.renderRegister())
	case router.Profile:
		b.WriteString(m.renderProfile())
	case router.Feed:
		b.WriteString(m.renderFeed())
	case router.AddRestaurant:
		b.WriteString(m.renderAddRestaurant())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderNav() string {
	type navEntry struct {
		label string
		page  router.Page
		show  bool
	}
	authed := m.store.IsAuthenticated()
	entries := []navEntry{
		{"1:Home", router.Home, true},
		{"2:Login", router.Login, !authed},
		{"3:Register", router.Register, !authed},
		{"4:Profile", router.Profile, authed},
		{"5:Feed", router.Feed, authed},
		{"6:Add Restaurant", router.AddRestaurant, m.router.CanManageRestaurants()},
	}

	items := []string{m.styles.Title.Render("platefinder")}
	for _, e := range entries {
		if !e.show {
			continue
		}
		style := m.styles.NavItem
		if m.router.Current() == e.page {
			style = m.styles.NavActive
		}
		items = append(items, style.Render(e.label))
	}
	if authed {
		items = append(items, m.styles.NavItem.Render("o:Logout"))
	}
	return m.styles.Header.Render(strings.Join(items, "  "))
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(m.welcome)
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Quick Search"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Subtitle.Render("Guided Filter"))
	b.WriteString("\n")
	b.WriteString(m.filter.view(m.styles))

	if m.homeTitle != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Title.Render(m.homeTitle))
		b.WriteString("\n")
		b.WriteString(m.viewport.View())
	}
	return b.String()
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Login"))
	b.WriteString("\n\n")
	b.WriteString(m.login.view(m.styles))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter: log in  ·  alt+3: create an account"))
	return b.String()
}

func (m *Model) renderRegister() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Create Account"))
	b.WriteString("\n\n")
	b.WriteString(m.register.view(m.styles))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter: register  ·  alt+2: back to login"))
	return b.String()
}

func (m *Model) renderProfile() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Your Profile"))
	b.WriteString("\n\n")

	if user := m.store.Current().User; user != nil {
		b.WriteString(fmt.Sprintf("%s %s\n", m.styles.Bold.Render("Username:"), user.Username))
		b.WriteString(fmt.Sprintf("%s %s\n", m.styles.Bold.Render("Email:"), user.Email))
		if exp := m.store.ExpiresAt(); exp != nil {
			b.WriteString(m.styles.Muted.Render(
				fmt.Sprintf("Session expires %s", exp.Format("2006-01-02 15:04"))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.profile.view(m.styles))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter: save changes"))
	return b.String()
}

func (m *Model) renderFeed() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Your Personalized Feed"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	return b.String()
}

func (m *Model) renderAddRestaurant() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Add Restaurant"))
	b.WriteString("\n\n")
	b.WriteString("Restaurant submission is not available yet.\n")
	b.WriteString(m.styles.Muted.Render("This administrative page is a placeholder."))
	return b.String()
}

func (m *Model) renderStatus() string {
	var parts []string
	if m.busy > 0 {
		parts = append(parts, m.spinner.View()+" "+m.styles.Muted.Render("Working..."))
	}
	if m.toast.text != "" {
		style := m.styles.Info
		switch m.toast.kind {
		case toastSuccess:
			style = m.styles.Success
		case toastError:
			style = m.styles.Error
		}
		parts = append(parts, style.Render(m.toast.text))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderFooter() string {
	return m.styles.Footer.Render("alt+1..6: pages  ·  tab: next field  ·  esc: home  ·  ctrl+c: quit")
}

// refreshViewport rebuilds the scrollable results area for the visible
// page. Forms live outside the viewport so their cursors stay live.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	switch m.router.Current() {
	case router.Home:
		if m.homeTitle != "" {
			m.viewport.SetContent(ui.RenderCards(m.homeResults, m.styles))
			m.viewport.GotoTop()
		}
	case router.Feed:
		if m.feedLoaded {
			m.viewport.SetContent(ui.RenderCards(m.feedResults, m.styles))
		} else {
			m.viewport.SetContent(m.styles.Muted.Render("Loading your feed..."))
		}
		m.viewport.GotoTop()
	}
}
