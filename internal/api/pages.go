package api

import (
	"errors"
	"net/http"
	"strings"

	"ipal-monitor/internal/auth"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/service"
)

// pageData is passed to every page template.
type pageData struct {
	Title      string
	Page       string
	Username   string
	UserRole   model.Role
	DeviceName string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Auth.Session(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Auth.Session(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.render(w, "login.html", &pageData{Title: "Login", Page: "login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	u, err := s.Users.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "Username atau password salah",
		})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.Auth.SetSession(w, u); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("user logged in")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"role":    u.Role,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handlePage renders a page that only needs the session user.
func (s *Server) handlePage(name string) http.HandlerFunc {
	page := strings.TrimSuffix(name, ".html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, name, s.newPageData(r, page))
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	data := s.newPageData(r, "settings")
	if data.UserRole == "" {
		data.UserRole = model.RoleViewer
	}
	s.render(w, "settings.html", data)
}

func (s *Server) newPageData(r *http.Request, page string) *pageData {
	data := &pageData{
		Title:      strings.ToUpper(page[:1]) + page[1:],
		Page:       page,
		DeviceName: s.Device.DeviceName(),
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		data.Username = claims.Username
		data.UserRole = claims.Role
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, name string, data *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
