// Package routes defines HTTP route constants for the application.
package routes

const (
	// Static and assets
	RobotsPath  = "/robots.txt"
	HealthPath  = "/healthz"
	ThemeToggle = "/theme/toggle"

	// Root
	RootPath = "/"

	// Sidebar
	PartialsNotes = "/partials/notes"

	// Notes
	NotePath   = "/notes/{id}"
	NoteNew    = "/notes/new"
	NoteEdit   = "/notes/edit"
	NoteCancel = "/notes/cancel"
	NoteDraft  = "/notes/draft"
	NoteSave   = "/notes/save"
	NoteDelete = "/notes/delete"
)
