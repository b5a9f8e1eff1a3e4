package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wolfeidau/gestor/internal/admin"
	"github.com/wolfeidau/gestor/internal/models"
)

type companyInfoResponse struct {
	CNPJ         string `json:"cnpj"`
	NomeFantasia string `json:"nome_fantasia,omitempty"`
}

type organizationResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	OrgCode     *string              `json:"org_code"`
	CreatedAt   time.Time            `json:"created_at"`
	CompanyInfo *companyInfoResponse `json:"company_info,omitempty"`
}

func newOrganizationResponse(org *models.Organization) organizationResponse {
	resp := organizationResponse{
		ID:        org.ID.String(),
		Name:      org.Name,
		OrgCode:   org.OrgCode,
		CreatedAt: org.CreatedAt.UTC(),
	}
	if org.Company != nil {
		resp.CompanyInfo = &companyInfoResponse{
			CNPJ:         org.Company.TaxID,
			NomeFantasia: org.Company.TradeName,
		}
	}
	return resp
}

type listOrganizationsResponse struct {
	Organizations []organizationResponse `json:"organizations"`
}

func (s *Server) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.svc.ListOrganizations(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := listOrganizationsResponse{Organizations: make([]organizationResponse, 0, len(orgs))}
	for _, org := range orgs {
		resp.Organizations = append(resp.Organizations, newOrganizationResponse(org))
	}

	writeJSON(w, r, http.StatusOK, resp)
}

type createOrganizationRequest struct {
	Name         string `json:"name"`
	CNPJ         string `json:"cnpj"`
	NomeFantasia string `json:"nome_fantasia"`
	OrgCode      string `json:"org_code"`
}

func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed request body", admin.ErrInvalidInput))
		return
	}

	org, err := s.svc.CreateOrganization(r.Context(), admin.NewOrganization{
		Name:      req.Name,
		TaxID:     req.CNPJ,
		TradeName: req.NomeFantasia,
		OrgCode:   req.OrgCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, newOrganizationResponse(org))
}

func (s *Server) switchOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: organization id must be a UUID", admin.ErrInvalidInput))
		return
	}

	org, err := s.svc.SwitchOrganization(r.Context(), orgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, newOrganizationResponse(org))
}

type exportRequest struct {
	OrganizationID string `json:"organization_id"`
	Format         string `json:"format"`
}

type exportResponse struct {
	Data   any    `json:"data"`
	Format string `json:"format"`
}

func (s *Server) exportDatabase(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed request body", admin.ErrInvalidInput))
		return
	}

	res, err := s.svc.ExportOrganization(r.Context(), req.OrganizationID, req.Format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, exportResponse{
		Data:   res.Data(),
		Format: string(res.Format),
	})
}
