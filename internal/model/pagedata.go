package model

import (
	"net/http"

	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/theme"
)

// PageData carries what every rendered page needs besides the notes.
type PageData struct {
	SiteName string
	Tagline  string

	PageURL string

	Theme            string
	ThemeIcon        string
	ThemeToggleLabel string
	AllowThemeSwitch bool

	// SearchDelay is an htmx delay, e.g. "250ms".
	SearchDelay string
}

func NewPageData(r *http.Request) *PageData {
	cfg := config.AppConfig
	if cfg == nil {
		cfg = config.Default()
	}

	current := theme.GetThemeFromRequest(r)
	return &PageData{
		SiteName:         cfg.Site.Name,
		Tagline:          cfg.Site.Tagline,
		PageURL:          r.URL.Path,
		Theme:            current,
		ThemeIcon:        theme.GetThemeIcon(current),
		ThemeToggleLabel: theme.ToggleLabel(current),
		AllowThemeSwitch: theme.SwitchingAllowed(),
		SearchDelay:      cfg.Search.Debounce.String(),
	}
}
