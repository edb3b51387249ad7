package web

import (
	"net/http"

	"github.com/trevorjharder/Coastal-Waves/internal/domain"
	"github.com/trevorjharder/Coastal-Waves/internal/service"
)

type createPaintingRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type createVariantRequest struct {
	PaintingID int64 `json:"painting_id"`
	domain.VariantDescriptor
}

type createLocationRequest struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	IsHome bool   `json:"is_home"`
}

type setHomeRequest struct {
	IsHome bool `json:"is_home"`
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *Server) handleListPaintings(w http.ResponseWriter, r *http.Request) {
	paintings, err := s.service.ListPaintings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(paintings))
}

func (s *Server) handleCreatePainting(w http.ResponseWriter, r *http.Request) {
	var req createPaintingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	p, err := s.service.CreatePainting(r.Context(), req.Code, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPainting(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.badRequest(w, "invalid painting id")
		return
	}
	p, err := s.service.GetPainting(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListVariants(w http.ResponseWriter, r *http.Request) {
	paintingID, err := queryInt64(r, "painting_id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	variants, err := s.service.ListVariants(r.Context(), paintingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(variants))
}

func (s *Server) handleCreateVariant(w http.ResponseWriter, r *http.Request) {
	var req createVariantRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if req.PaintingID <= 0 {
		s.badRequest(w, "painting_id is required")
		return
	}
	v, err := s.service.CreateVariant(r.Context(), req.PaintingID, req.VariantDescriptor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.service.ListLocations(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(locations))
}

func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	l, err := s.service.CreateLocation(r.Context(), req.Code, req.Name, req.IsHome)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleSetHome(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.badRequest(w, "invalid location id")
		return
	}
	var req setHomeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	l, err := s.service.SetHome(r.Context(), id, req.IsHome)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req service.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	res, err := s.service.Resolve(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}
