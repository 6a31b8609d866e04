// Package web serves the notes UI: a full page on first load and htmx
// partials for every action afterwards.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-notes/internal/cache"
	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/model"
	"github.com/debemdeboas/the-notes/internal/notes"
	"github.com/debemdeboas/the-notes/internal/routes"
	"github.com/debemdeboas/the-notes/internal/session"
	"github.com/debemdeboas/the-notes/internal/util"
)

//go:embed static/* templates/*
var content embed.FS

var webLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	webLogger = l
}

// Template names defined inside app.html.
const (
	partialApp      = "app"
	partialNoteList = "note-list"
)

type Server struct {
	sessions *session.Registry
	cfg      *config.Config
	tmpl     *template.Template
	static   fs.FS
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("Jan 2, 2006 15:04")
	},
	"isoTime": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
	// Only for markup built from constants, such as the theme icons.
	"safeHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
}

func NewServer(sessions *session.Registry, cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	tmpl, err := template.New(config.TemplateLayout).
		Funcs(templateFuncs).
		ParseFS(content, config.TemplatesLocalDir+"/*.html")
	if err != nil {
		return nil, err
	}

	static, err := fs.Sub(content, config.StaticLocalDir)
	if err != nil {
		return nil, err
	}
	if err := cache.HashStatic(static, config.StaticUrlPath, util.ContentHash); err != nil {
		return nil, err
	}

	return &Server{
		sessions: sessions,
		cfg:      cfg,
		tmpl:     tmpl,
		static:   static,
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, config.CTypeText)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow: /"))
	})
	mux.HandleFunc("GET "+routes.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, config.CTypeText)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(s.static))))

	mux.HandleFunc("GET "+routes.RootPath+"{$}", s.serveIndex)
	mux.HandleFunc("GET "+routes.PartialsNotes, s.serveNoteList)
	mux.HandleFunc("GET "+routes.NotePath, s.serveSelect)
	mux.HandleFunc("POST "+routes.NoteNew, s.serveNew)
	mux.HandleFunc("POST "+routes.NoteEdit, s.serveEdit)
	mux.HandleFunc("POST "+routes.NoteCancel, s.serveCancel)
	mux.HandleFunc("POST "+routes.NoteDraft, s.serveDraft)
	mux.HandleFunc("POST "+routes.NoteSave, s.serveSave)
	mux.HandleFunc("POST "+routes.NoteDelete, s.serveDelete)
	mux.HandleFunc("POST "+routes.ThemeToggle, serveThemePostToggle)

	return accessLog(cacheIt(secureHeaders(mux.ServeHTTP)))
}

type pageData struct {
	*model.PageData
	View         notes.View
	Viewing      bool
	DeletePrompt string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, v notes.View) {
	data := pageData{
		PageData:     model.NewPageData(r),
		View:         v,
		Viewing:      v.Mode == notes.ModeViewing,
		DeletePrompt: notes.DeletePrompt,
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		webLogger.Error().Err(err).Str("template", name).Msg("Error rendering template")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// session returns the caller's session, starting one when the cookie is
// missing or the session expired. The cookie is re-issued on every request
// so its lifetime tracks the server-side idle timeout.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id session.ID
	if cookie, err := r.Cookie(s.cfg.Session.Cookie); err == nil {
		id = session.ID(cookie.Value)
	}

	sess, created := s.sessions.GetOrCreate(id)
	if created {
		webLogger.Debug().Str("session_id", string(sess.ID)).Msg("Started session")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.Cookie,
		Value:    string(sess.ID),
		Path:     "/",
		MaxAge:   int(s.cfg.Session.IdleTimeout.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func isHx(r *http.Request) bool {
	return r.Header.Get(config.HHxRequest) == "true"
}

// respond answers an action: htmx gets the re-rendered app, a plain form
// post is sent back to the page.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if isHx(r) {
		s.render(w, r, partialApp, sess.Controller.State())
		return
	}
	http.Redirect(w, r, routes.RootPath, http.StatusSeeOther)
}
