package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sme-outreach/internal/model"
	"github.com/sells-group/sme-outreach/internal/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.store.ListCountries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if countries == nil {
		countries = []model.Country{}
	}
	writeJSON(w, http.StatusOK, countries)
}

func (s *Server) handleCreateCountry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
		Flag string `json:"flag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, eris.Wrap(pipeline.ErrValidation, "invalid request body"))
		return
	}

	country, err := s.ctrl.CreateCountry(r.Context(), req.Name, req.Code, req.Flag)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, country)
}

func (s *Server) handleDeleteCountry(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCountry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSearchSMEs(w http.ResponseWriter, r *http.Request) {
	smes, err := s.ctrl.Discover(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, smes)
}

func (s *Server) handleListSMEs(w http.ResponseWriter, r *http.Request) {
	smes, err := s.store.ListSMEs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if smes == nil {
		smes = []model.SME{}
	}
	writeJSON(w, http.StatusOK, smes)
}

func (s *Server) handleBuildWebsite(w http.ResponseWriter, r *http.Request) {
	website, err := s.ctrl.BuildWebsite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, website)
}

func (s *Server) handleGetWebsite(w http.ResponseWriter, r *http.Request) {
	website, err := s.store.GetWebsite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deployed_url": website.DeployedURL,
		"slug":         website.Slug,
		"built_at":     website.BuiltAt,
		"deployed_at":  website.DeployedAt,
	})
}

func (s *Server) handlePreviewWebsite(w http.ResponseWriter, r *http.Request) {
	website, err := s.store.GetWebsite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Frame-Options", "SAMEORIGIN")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(website.HTML))
}

func (s *Server) handleDownloadWebsite(w http.ResponseWriter, r *http.Request) {
	smeID := chi.URLParam(r, "id")
	website, err := s.store.GetWebsite(r.Context(), smeID)
	if err != nil {
		writeError(w, err)
		return
	}

	name := website.Slug
	if name == "" {
		sme, err := s.store.GetSME(r.Context(), smeID)
		if err == nil {
			name = pipeline.Slugify(sme.Name)
		}
	}
	if name == "" {
		name = "website"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".html"))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(website.HTML))
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	result, err := s.ctrl.Deploy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateEmail(w http.ResponseWriter, r *http.Request) {
	email, err := s.ctrl.GenerateEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, email)
}

func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	email, err := s.store.GetEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, email)
}
