// Package theme handles the light/dark theme preference.
package theme

import (
	"net/http"
	"strings"

	"github.com/debemdeboas/the-notes/internal/config"
)

// Normalize maps user supplied theme names ("dark", "dark-theme", ...) to
// one of the two supported themes. Anything else falls back to the default.
func Normalize(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light", config.LightTheme:
		return config.LightTheme
	case "dark", config.DarkTheme:
		return config.DarkTheme
	default:
		return config.DefaultTheme
	}
}

func GetDefaultTheme() string {
	if config.AppConfig == nil {
		return config.DefaultTheme
	}
	return Normalize(config.AppConfig.Theme.Default)
}

func SwitchingAllowed() bool {
	return config.AppConfig == nil || config.AppConfig.Theme.AllowSwitching
}

func GetThemeFromRequest(r *http.Request) string {
	if !SwitchingAllowed() {
		return GetDefaultTheme()
	}
	if cookie, err := r.Cookie(config.CookieTheme); err == nil && cookie.Value != "" {
		return Normalize(cookie.Value)
	}
	return GetDefaultTheme()
}

func Opposite(theme string) string {
	if Normalize(theme) == config.DarkTheme {
		return config.LightTheme
	}
	return config.DarkTheme
}

// GetThemeIcon returns the icon of the theme the toggle switches to.
func GetThemeIcon(theme string) string {
	if Normalize(theme) == config.LightTheme {
		return config.DarkThemeIcon
	}
	return config.LightThemeIcon
}

// ToggleLabel is the accessible label of the theme toggle button.
func ToggleLabel(theme string) string {
	if Normalize(theme) == config.LightTheme {
		return "Switch to dark mode"
	}
	return "Switch to light mode"
}

func Cookie(theme string) *http.Cookie {
	return &http.Cookie{
		Name:     config.CookieTheme,
		Value:    Normalize(theme),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	}
}
