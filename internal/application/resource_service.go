package application

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ResourceRepository captures the persistence interactions needed by the
// resource service.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	UpdateResource(ctx context.Context, resource Resource) error
	DeleteResource(ctx context.Context, id string) error
	ListResources(ctx context.Context, agencyID string) ([]Resource, error)
}

// resourceKinds enumerates the accepted resource categories.
var resourceKinds = map[string]struct{}{
	"vehicle": {},
	"machine": {},
}

// ResourceService orchestrates validation and persistence for the resource
// catalog.
type ResourceService struct {
	resources   ResourceRepository
	idGenerator func() string
	now         func() time.Time
}

// NewResourceService wires dependencies for resource operations.
func NewResourceService(resources ResourceRepository, idGenerator func() string, now func() time.Time) *ResourceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ResourceService{resources: resources, idGenerator: idGenerator, now: now}
}

// CreateResource validates the request before delegating to persistence.
func (s *ResourceService) CreateResource(ctx context.Context, params CreateResourceParams) (Resource, error) {
	if s == nil {
		return Resource{}, fmt.Errorf("ResourceService is nil")
	}

	input := params.Input
	vErr := &ValidationError{}
	validateResourceCore(input, vErr)
	if vErr.HasErrors() {
		return Resource{}, vErr
	}

	createdAt := s.now()
	resource := Resource{
		ID:           s.idGenerator(),
		AgencyID:     params.Scope.AgencyID,
		Name:         strings.TrimSpace(input.Name),
		Kind:         input.Kind,
		Registration: input.Registration,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	if err := s.resources.CreateResource(ctx, resource); err != nil {
		return Resource{}, mapRepoError(err)
	}
	return resource, nil
}

// UpdateResource validates the request before updating persistence state.
func (s *ResourceService) UpdateResource(ctx context.Context, params UpdateResourceParams) (Resource, error) {
	if s == nil {
		return Resource{}, fmt.Errorf("ResourceService is nil")
	}

	existing, err := s.getScoped(ctx, params.Scope, params.ResourceID)
	if err != nil {
		return Resource{}, err
	}

	input := params.Input
	vErr := &ValidationError{}
	validateResourceCore(input, vErr)
	if vErr.HasErrors() {
		return Resource{}, vErr
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Kind = input.Kind
	updated.Registration = input.Registration
	updated.UpdatedAt = s.now()

	if err := s.resources.UpdateResource(ctx, updated); err != nil {
		return Resource{}, mapRepoError(err)
	}
	return updated, nil
}

// GetResource retrieves a resource within the caller's agency scope.
func (s *ResourceService) GetResource(ctx context.Context, scope Scope, resourceID string) (Resource, error) {
	if s == nil {
		return Resource{}, fmt.Errorf("ResourceService is nil")
	}
	return s.getScoped(ctx, scope, resourceID)
}

// DeleteResource removes a resource within the caller's agency scope.
func (s *ResourceService) DeleteResource(ctx context.Context, scope Scope, resourceID string) error {
	if s == nil {
		return fmt.Errorf("ResourceService is nil")
	}
	if _, err := s.getScoped(ctx, scope, resourceID); err != nil {
		return err
	}
	if err := s.resources.DeleteResource(ctx, resourceID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// ListResources enumerates the agency catalog in its stable name order.
func (s *ResourceService) ListResources(ctx context.Context, scope Scope) ([]Resource, error) {
	if s == nil {
		return nil, fmt.Errorf("ResourceService is nil")
	}
	resources, err := s.resources.ListResources(ctx, scope.AgencyID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return resources, nil
}

func (s *ResourceService) getScoped(ctx context.Context, scope Scope, resourceID string) (Resource, error) {
	resource, err := s.resources.GetResource(ctx, resourceID)
	if err != nil {
		return Resource{}, mapRepoError(err)
	}
	if scope.AgencyID != "" && resource.AgencyID != scope.AgencyID {
		return Resource{}, ErrNotFound
	}
	return resource, nil
}

func validateResourceCore(input ResourceInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if _, ok := resourceKinds[input.Kind]; !ok {
		vErr.add("kind", "kind must be vehicle or machine")
	}
}
