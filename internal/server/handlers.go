package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/domain"
	"github.com/h0rv/gpx/internal/gh"
	"go.uber.org/zap"
)

type indexVM struct {
	LoggedIn bool
}

type projectsVM struct {
	Login    string
	Projects []domain.Project
	Total    int
}

type columnsVM struct {
	ProjectID int64
	Columns   []domain.Column
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, err := s.identity(r)
	s.render(w, http.StatusOK, "index.html", indexVM{LoggedIn: err == nil})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	s.setStateCookie(w, state)
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	want, ok := s.expectedState(r)
	s.clearStateCookie(w)
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(q.Get("state"))) != 1 {
		s.logger.Warn("oauth callback with unexpected state")
		http.Error(w, "invalid login state", http.StatusUnauthorized)
		return
	}

	id, err := s.oauth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		s.logger.Warn("oauth exchange failed", zap.Error(err))
		http.Error(w, "failed to obtain access token", http.StatusUnauthorized)
		return
	}

	// A fresh session id on every login.
	if old := s.lookupSession(r); old != nil {
		s.sessions.Delete(old.ID())
	}
	sess := s.sessions.NewSession()
	auth.SetAccessToken(sess, id.AccessToken)
	s.sessions.Save(sess)
	s.setSessionCookie(w, sess)

	s.logger.Info("user logged in", zap.String("session", sess.ID()))
	http.Redirect(w, r, s.cfg.AppURL, http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := s.lookupSession(r); sess != nil {
		auth.ClearAccessToken(sess)
		s.sessions.Delete(sess.ID())
	}
	s.clearSessionCookie(w)
	s.render(w, http.StatusOK, "logged_out.html", nil)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	id, err := s.identity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := s.projects.ListProjects(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	projects := s.projector.ProjectList(data.Projects)
	if len(projects) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.render(w, http.StatusOK, "projects_list.html", projectsVM{
		Login:    data.Viewer.Login,
		Projects: projects,
		Total:    data.Projects.TotalCount,
	})
}

func (s *Server) handleProjectEditor(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		http.Error(w, "invalid project number", http.StatusBadRequest)
		return
	}

	id, err := s.identity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	details, err := s.projects.GetProjectDetails(r.Context(), id, number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "project_editor.html", s.projector.ItemEditor(r.Context(), *details))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	item := gh.NewItem{
		ProjectID:   r.PathValue("id"),
		Title:       strings.TrimSpace(r.PostForm.Get("title")),
		Status:      strings.TrimSpace(r.PostForm.Get("status")),
		Description: r.PostForm.Get("description"),
	}
	if item.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	id, err := s.identity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.projects.AddItem(r.Context(), id, item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "item.html", s.projector.NewItem(r.Context(), *created))
}

func (s *Server) handleProjectItems(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || projectID <= 0 {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	id, err := s.identity(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	columns, err := s.columns.ListColumns(r.Context(), id, projectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "column_items.html", columnsVM{
		ProjectID: projectID,
		Columns:   s.projector.Columns(r.Context(), columns),
	})
}
