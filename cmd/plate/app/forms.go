package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"platefinder/cmd/plate/ui"
	"platefinder/internal/search"
	"platefinder/internal/types"
)

// form is a vertical stack of labeled text inputs with one focused field.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...string) form {
	f := form{labels: fields}
	for range fields {
		in := textinput.New()
		in.CharLimit = 120
		in.Width = 40
		f.inputs = append(f.inputs, in)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *form) next() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) prev() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
}

func (f *form) view(styles ui.Styles) string {
	var sb strings.Builder
	for i, label := range f.labels {
		style := styles.Muted
		if i == f.focus {
			style = styles.Subtitle
		}
		sb.WriteString(style.Render(label))
		sb.WriteString("\n")
		sb.WriteString(f.inputs[i].View())
		sb.WriteString("\n")
	}
	return sb.String()
}

// splitCSV turns comma-separated user input into a clean string set.
func splitCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// --- login ---

type loginForm struct{ form }

const (
	loginUsername = iota
	loginPassword
)

func newLoginForm() loginForm {
	f := loginForm{form: newForm("Username", "Password")}
	f.inputs[loginPassword].EchoMode = textinput.EchoPassword
	return f
}

func (f *loginForm) credentials() (types.Credentials, error) {
	creds := types.Credentials{
		Username: f.value(loginUsername),
		Password: f.inputs[loginPassword].Value(),
	}
	if creds.Username == "" {
		return creds, &search.ValidationError{Field: "username", Message: "username is required"}
	}
	if creds.Password == "" {
		return creds, &search.ValidationError{Field: "password", Message: "password is required"}
	}
	return creds, nil
}

// --- register ---

type registerForm struct{ form }

const (
	regUsername = iota
	regEmail
	regPassword
	regLocation
	regBudget
	regCuisines
	regDietary
)

func newRegisterForm() registerForm {
	f := registerForm{form: newForm(
		"Username", "Email", "Password", "Location",
		"Default budget", "Favorite cuisines (comma separated)",
		"Dietary restrictions (comma separated)",
	)}
	f.inputs[regPassword].EchoMode = textinput.EchoPassword
	return f
}

// prefillLocation applies the detected city, but only into an empty field —
// user input is never overwritten.
func (f *registerForm) prefillLocation(city string) {
	if strings.TrimSpace(f.inputs[regLocation].Value()) == "" {
		f.inputs[regLocation].SetValue(city)
	}
}

func (f *registerForm) registration() (types.Registration, error) {
	reg := types.Registration{
		Username: f.value(regUsername),
		Email:    f.value(regEmail),
		Password: f.inputs[regPassword].Value(),
		Preferences: types.Preferences{
			FavoriteCuisines:    splitCSV(f.value(regCuisines)),
			DietaryRestrictions: splitCSV(f.value(regDietary)),
			HomeAddress:         f.value(regLocation),
		},
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return reg, &search.ValidationError{Field: "register", Message: "username, email and password are required"}
	}
	if budget := f.value(regBudget); budget != "" {
		n, err := strconv.Atoi(budget)
		if err != nil || n < 0 {
			return reg, &search.ValidationError{Field: "defaultBudget", Message: "must be a non-negative number"}
		}
		reg.Preferences.DefaultBudget = &n
	}
	return reg, nil
}

// --- profile ---

type profileForm struct{ form }

const (
	profCuisines = iota
	profDietary
	profBudget
	profAddress
)

func newProfileForm() profileForm {
	return profileForm{form: newForm(
		"Favorite cuisines (comma separated)",
		"Dietary restrictions (comma separated)",
		"Default budget", "Home address",
	)}
}

// populate fills the edit form from a fresh profile snapshot, replacing
// whatever was there.
func (f *profileForm) populate(p *types.UserProfile) {
	if p == nil {
		f.reset()
		return
	}
	f.inputs[profCuisines].SetValue(strings.Join(p.FavoriteCuisines, ", "))
	f.inputs[profDietary].SetValue(strings.Join(p.DietaryRestrictions, ", "))
	if p.DefaultBudget != nil {
		f.inputs[profBudget].SetValue(strconv.Itoa(*p.DefaultBudget))
	} else {
		f.inputs[profBudget].SetValue("")
	}
	f.inputs[profAddress].SetValue(p.HomeAddress)
}

// pendingUpdate builds the outgoing profile change from the form fields.
func (f *profileForm) pendingUpdate() (types.ProfileUpdate, error) {
	upd := types.ProfileUpdate{
		FavoriteCuisines:    splitCSV(f.value(profCuisines)),
		DietaryRestrictions: splitCSV(f.value(profDietary)),
		HomeAddress:         f.value(profAddress),
	}
	if budget := f.value(profBudget); budget != "" {
		n, err := strconv.Atoi(budget)
		if err != nil || n < 0 {
			return upd, &search.ValidationError{Field: "defaultBudget", Message: "must be a non-negative number"}
		}
		upd.DefaultBudget = &n
	}
	return upd, nil
}

// --- guided filter questionnaire ---

type filterForm struct{ form }

const (
	filtLocation = iota
	filtCuisines
	filtDietary
	filtOccasions
	filtMaxPrice
	filtMaxDistance
)

func newFilterForm() filterForm {
	return filterForm{form: newForm(
		"Where? (location)",
		"Cuisines (comma separated)",
		"Dietary options (comma separated)",
		"Occasion (comma separated)",
		"Max price",
		"Max distance (km)",
	)}
}

// filters builds the outgoing filter set; empty fields are dropped by
// Filters.Values, so blank answers never reach the wire.
func (f *filterForm) filters(pos *types.Position) (search.Filters, error) {
	maxPrice, err := search.ParseMaxPrice(f.value(filtMaxPrice))
	if err != nil {
		return search.Filters{}, err
	}
	maxDistance, err := search.ParseMaxDistance(f.value(filtMaxDistance))
	if err != nil {
		return search.Filters{}, err
	}
	filters := search.Filters{
		Location:       f.value(filtLocation),
		Cuisines:       splitCSV(f.value(filtCuisines)),
		DietaryOptions: splitCSV(f.value(filtDietary)),
		OccasionTags:   splitCSV(f.value(filtOccasions)),
		MaxPrice:       maxPrice,
		MaxDistanceKm:  maxDistance,
	}
	if maxDistance != nil && pos != nil {
		filters.Position = pos
	}
	return filters, nil
}
