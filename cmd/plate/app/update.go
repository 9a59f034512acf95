package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"platefinder/internal/router"
	"platefinder/internal/search"
)

// Update is the single event loop. Completion messages always release the
// busy indicator before anything else happens, so no error path can leave
// the spinner stuck.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(4, msg.Height-8))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(4, msg.Height-8)
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		if msg.seq == m.toast.seq {
			m.toast.text = ""
		}
		return m, nil

	case resumeDoneMsg:
		m.releaseOp()
		if msg.err != nil {
			// The store already fell back to logout; the stale session is
			// gone and the UI simply starts logged out.
			return m, nil
		}
		if msg.profile != nil {
			return m, m.showToast(fmt.Sprintf("Welcome back, %s!", msg.profile.Username), toastInfo)
		}
		return m, nil

	case cityDetectedMsg:
		if msg.pos != nil {
			m.position = msg.pos
		}
		if msg.city != "" && m.store.DetectedCity() == "" {
			m.store.SetDetectedCity(msg.city)
		}
		return m, nil

	case loginDoneMsg:
		m.releaseOp()
		m.inFlight = false
		if msg.err != nil {
			return m, m.reportError("login", "Login failed. Please check your credentials.", msg.err)
		}
		m.login.reset()
		cmd := m.gotoPage(router.Home)
		return m, tea.Batch(cmd, m.showToast("Login successful!", toastSuccess))

	case registerDoneMsg:
		m.releaseOp()
		m.inFlight = false
		if msg.err != nil {
			return m, m.reportError("register", "Registration failed. Please try again.", msg.err)
		}
		m.register.reset()
		cmd := m.gotoPage(router.Login)
		return m, tea.Batch(cmd, m.showToast("Registration successful! Please login.", toastSuccess))

	case profileLoadedMsg:
		m.releaseOp()
		if msg.err != nil {
			// The page stays visible, just without data.
			return m, m.reportError("load-profile", "Failed to load profile data.", msg.err)
		}
		m.store.ReplaceUser(msg.profile)
		m.profile.populate(msg.profile)
		return m, nil

	case profileSavedMsg:
		m.releaseOp()
		m.inFlight = false
		if msg.err != nil {
			return m, m.reportError("save-profile", "Failed to update profile.", msg.err)
		}
		m.store.ReplaceUser(msg.profile)
		m.profile.populate(msg.profile)
		return m, m.showToast("Profile updated successfully!", toastSuccess)

	case searchDoneMsg:
		m.releaseOp()
		m.inFlight = false
		if msg.err != nil {
			return m, m.reportError("search", "Search failed. Please try again.", msg.err)
		}
		m.homeTitle = msg.title
		m.homeResults = msg.records
		m.refreshViewport()
		return m, nil

	case feedDoneMsg:
		m.releaseOp()
		if msg.err != nil {
			m.feedResults = nil
			m.feedLoaded = true
			m.refreshViewport()
			return m, m.reportError("feed", "Failed to load personalized feed.", msg.err)
		}
		m.feedResults = msg.records
		m.feedLoaded = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global navigation first: alt-digit page jumps avoid stealing the
	// editing keys the text inputs use.
	if msg.Alt && len(msg.Runes) == 1 {
		switch msg.Runes[0] {
		case '1':
			return m, m.gotoPage(router.Home)
		case '2':
			return m, m.gotoPage(router.Login)
		case '3':
			return m, m.gotoPage(router.Register)
		case '4':
			return m, m.gotoPage(router.Profile)
		case '5':
			return m, m.gotoPage(router.Feed)
		case '6':
			return m, m.gotoPage(router.AddRestaurant)
		case 'o':
			return m, m.logout()
		}
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.router.Current() != router.Home {
			return m, m.gotoPage(router.Home)
		}
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		m.cycleFocus(msg.Type == tea.KeyShiftTab)
		return m, nil
	case tea.KeyEnter:
		return m, m.submit()
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		if m.router.Current() == router.Feed || m.router.Current() == router.Home {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, m.updateActiveInput(msg)
}

// gotoPage runs a router transition, applies its side effects (redirect
// notice, prefill, data load) and fixes up input focus for the new page.
func (m *Model) gotoPage(target router.Page) tea.Cmd {
	tr := m.router.Goto(target)

	var cmds []tea.Cmd
	if tr.Redirected {
		if tr.To == router.Login {
			cmds = append(cmds, m.showToast("Please log in to continue.", toastInfo))
		} else {
			cmds = append(cmds, m.showToast("Restaurant management is limited to administrators.", toastError))
		}
	}
	if tr.PrefillLocation != "" {
		m.register.prefillLocation(tr.PrefillLocation)
	}

	switch tr.Load {
	case router.LoadProfile:
		cmds = append(cmds, m.startOp(m.loadProfileCmd()))
	case router.LoadFeed:
		m.feedLoaded = false
		cmds = append(cmds, m.startOp(m.loadFeedCmd()))
	}

	m.focusPage(tr.To)
	m.refreshViewport()
	return tea.Batch(cmds...)
}

// logout clears the session and returns Home. Always succeeds.
func (m *Model) logout() tea.Cmd {
	m.store.Logout()
	m.feedResults = nil
	m.feedLoaded = false
	m.profile.reset()
	cmd := m.gotoPage(router.Home)
	return tea.Batch(cmd, m.showToast("Logged out successfully!", toastSuccess))
}

// submit dispatches enter on the current page. While an action is in
// flight its control is disabled — rapid duplicate submissions are dropped
// here, not deduplicated downstream.
func (m *Model) submit() tea.Cmd {
	if m.inFlight {
		return nil
	}

	switch m.router.Current() {
	case router.Login:
		creds, err := m.login.credentials()
		if err != nil {
			return m.showToast(validationMessage(err), toastError)
		}
		m.inFlight = true
		return m.startOp(m.loginCmd(creds))

	case router.Register:
		reg, err := m.register.registration()
		if err != nil {
			return m.showToast(validationMessage(err), toastError)
		}
		m.inFlight = true
		return m.startOp(m.registerCmd(reg))

	case router.Profile:
		upd, err := m.profile.pendingUpdate()
		if err != nil {
			return m.showToast(validationMessage(err), toastError)
		}
		m.inFlight = true
		return m.startOp(m.saveProfileCmd(upd))

	case router.Home:
		if m.homeFocus == 0 {
			query, err := search.ValidateQuery(m.search.Value())
			if err != nil {
				return m.showToast("Type something to search for.", toastError)
			}
			m.inFlight = true
			return m.startOp(m.quickSearchCmd(query))
		}
		filters, err := m.filter.filters(m.position)
		if err != nil {
			return m.showToast(validationMessage(err), toastError)
		}
		if filters.IsEmpty() {
			return m.showToast("Pick at least one filter.", toastError)
		}
		m.inFlight = true
		return m.startOp(m.filterCmd(filters))
	}
	return nil
}

// cycleFocus moves focus between the inputs of the visible page.
func (m *Model) cycleFocus(backwards bool) {
	switch m.router.Current() {
	case router.Login:
		if backwards {
			m.login.prev()
		} else {
			m.login.next()
		}
	case router.Register:
		if backwards {
			m.register.prev()
		} else {
			m.register.next()
		}
	case router.Profile:
		if backwards {
			m.profile.prev()
		} else {
			m.profile.next()
		}
	case router.Home:
		// The home cycle covers the quick-search box plus the
		// questionnaire fields.
		total := 1 + len(m.filter.inputs)
		step := 1
		if backwards {
			step = total - 1
		}
		m.setHomeFocus((m.homeFocus + step) % total)
	}
}

func (m *Model) setHomeFocus(focus int) {
	m.homeFocus = focus
	if focus == 0 {
		m.search.Focus()
		m.filter.inputs[m.filter.focus].Blur()
		return
	}
	m.search.Blur()
	m.filter.inputs[m.filter.focus].Blur()
	m.filter.focus = focus - 1
	m.filter.inputs[m.filter.focus].Focus()
}

// focusPage puts the cursor in the first input of the page being entered.
func (m *Model) focusPage(page router.Page) {
	m.search.Blur()
	switch page {
	case router.Home:
		m.setHomeFocus(0)
	case router.Login:
		m.login.inputs[m.login.focus].Focus()
	case router.Register:
		m.register.inputs[m.register.focus].Focus()
	case router.Profile:
		m.profile.inputs[m.profile.focus].Focus()
	}
}

// updateActiveInput forwards key events to whichever input has focus.
func (m *Model) updateActiveInput(msg tea.Msg) tea.Cmd {
	switch m.router.Current() {
	case router.Login:
		return m.login.update(msg)
	case router.Register:
		return m.register.update(msg)
	case router.Profile:
		return m.profile.update(msg)
	case router.Home:
		if m.homeFocus == 0 {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return cmd
		}
		return m.filter.update(msg)
	}
	return nil
}

// validationMessage extracts the user-facing part of a form validation
// failure.
func validationMessage(err error) string {
	var v *search.ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	return err.Error()
}
