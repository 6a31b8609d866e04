package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HHxRequest    = "Hx-Request"
	HHxTrigger    = "Hx-Trigger"

	CTypeHTML = "text/html; charset=utf-8"
	CTypeJSON = "application/json"
	CTypeText = "text/plain; charset=utf-8"
)

const (
	HTTPErrNoteNotFound = "Note not found"
)

const (
	CookieTheme = "theme"
)
