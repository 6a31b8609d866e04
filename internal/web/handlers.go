package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/model"
	"github.com/debemdeboas/the-notes/internal/notes"
	"github.com/debemdeboas/the-notes/internal/routes"
	"github.com/debemdeboas/the-notes/internal/theme"
)

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	ctrl := sess.Controller

	// Failures end up in the error banner.
	if q, ok := r.URL.Query()["q"]; ok {
		_ = ctrl.SetSearchText(r.Context(), q[0])
	} else {
		_ = ctrl.Reload(r.Context())
	}

	s.render(w, r, config.TemplateLayout, ctrl.State())
}

func (s *Server) serveNoteList(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	_ = sess.Controller.SetSearchText(r.Context(), r.URL.Query().Get("q"))
	s.render(w, r, partialNoteList, sess.Controller.State())
}

func (s *Server) serveSelect(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	ctrl := sess.Controller
	id := model.NoteID(r.PathValue("id"))

	err := ctrl.SelectNote(id)
	if errors.Is(err, notes.ErrUnknownNote) {
		// The list may predate the note, e.g. on a fresh session.
		_ = ctrl.Reload(r.Context())
		err = ctrl.SelectNote(id)
	}
	if err != nil {
		http.Error(w, config.HTTPErrNoteNotFound, http.StatusNotFound)
		return
	}

	s.respond(w, r, sess)
}

func (s *Server) serveNew(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Controller.StartNew()
	s.respond(w, r, sess)
}

func (s *Server) serveEdit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Controller.StartEdit()
	s.respond(w, r, sess)
}

func (s *Server) serveCancel(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Controller.CancelEdit()
	s.respond(w, r, sess)
}

// formValue returns a posted field with browser line endings normalized.
func formValue(r *http.Request, key string) (string, bool) {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.ReplaceAll(values[0], "\r\n", "\n"), true
}

// serveDraft keeps the server-side draft in step with the editor. The value
// is read from "value", or from a field named like the draft field itself.
func (s *Server) serveDraft(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	field, err := model.ParseField(r.FormValue("field"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	value, ok := formValue(r, "value")
	if !ok {
		value, _ = formValue(r, string(field))
	}

	sess := s.session(w, r)
	if err := sess.Controller.UpdateDraftField(field, value); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHx(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, routes.RootPath, http.StatusSeeOther)
}

func (s *Server) serveSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := s.session(w, r)
	ctrl := sess.Controller
	for _, field := range []model.Field{model.FieldTitle, model.FieldContent} {
		if value, ok := formValue(r, string(field)); ok {
			// Only fails for unknown fields.
			_ = ctrl.UpdateDraftField(field, value)
		}
	}

	if err := ctrl.Save(r.Context()); err != nil {
		webLogger.Debug().Err(err).Str("session_id", string(sess.ID)).Msg("Save rejected")
	}
	s.respond(w, r, sess)
}

func (s *Server) serveDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	confirmed := r.PostFormValue("confirm") == "yes"

	sess := s.session(w, r)
	err := sess.Controller.Delete(r.Context(), func(string) bool { return confirmed })
	if err != nil {
		webLogger.Debug().Err(err).Str("session_id", string(sess.ID)).Msg("Delete not performed")
	}
	s.respond(w, r, sess)
}

func serveThemePostToggle(w http.ResponseWriter, r *http.Request) {
	if !theme.SwitchingAllowed() {
		http.Error(w, "Theme switching is disabled", http.StatusForbidden)
		return
	}

	newTheme := theme.Opposite(theme.GetThemeFromRequest(r))
	http.SetCookie(w, theme.Cookie(newTheme))

	if !isHx(r) {
		http.Redirect(w, r, routes.RootPath, http.StatusSeeOther)
		return
	}

	w.Header().Set(config.HHxTrigger, fmt.Sprintf(`{"themeChanged":{"value":"%s"}}`, newTheme))
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.GetThemeIcon(newTheme)))
}
