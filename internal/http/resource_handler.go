package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
)

type resourceService interface {
	CreateResource(ctx context.Context, params application.CreateResourceParams) (application.Resource, error)
	UpdateResource(ctx context.Context, params application.UpdateResourceParams) (application.Resource, error)
	GetResource(ctx context.Context, scope application.Scope, resourceID string) (application.Resource, error)
	DeleteResource(ctx context.Context, scope application.Scope, resourceID string) error
	ListResources(ctx context.Context, scope application.Scope) ([]application.Resource, error)
}

type ResourceHandler struct {
	service   resourceService
	responder responder
}

func NewResourceHandler(service resourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{service: service, responder: newResponder(logger)}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	resource, err := h.service.CreateResource(r.Context(), application.CreateResourceParams{
		Scope: scope,
		Input: req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	resource, err := h.service.UpdateResource(r.Context(), application.UpdateResourceParams{
		Scope:      scope,
		ResourceID: resourceID,
		Input:      req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	resource, err := h.service.GetResource(r.Context(), scope, resourceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	if err := h.service.DeleteResource(r.Context(), scope, resourceID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scope, _ := ScopeFromContext(r.Context())
	resources, err := h.service.ListResources(r.Context(), scope)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]resourceDTO, 0, len(resources))
	for _, resource := range resources {
		out = append(out, toResourceDTO(resource))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResourcesResponse{Resources: out})
}

type resourceRequest struct {
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Registration *string `json:"registration"`
}

func (r resourceRequest) toInput() application.ResourceInput {
	return application.ResourceInput{
		Name:         strings.TrimSpace(r.Name),
		Kind:         strings.TrimSpace(r.Kind),
		Registration: r.Registration,
	}
}

type resourceResponse struct {
	Resource resourceDTO `json:"resource"`
}

type listResourcesResponse struct {
	Resources []resourceDTO `json:"resources"`
}

type resourceDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Registration *string `json:"registration,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toResourceDTO(resource application.Resource) resourceDTO {
	return resourceDTO{
		ID:           resource.ID,
		Name:         resource.Name,
		Kind:         resource.Kind,
		Registration: resource.Registration,
		CreatedAt:    resource.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    resource.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
