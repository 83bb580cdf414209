package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type resourceRepoStub struct {
	resources []Resource
	created   Resource
	updated   Resource
	createErr error
}

func (s *resourceRepoStub) CreateResource(ctx context.Context, resource Resource) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = resource
	return nil
}

func (s *resourceRepoStub) GetResource(ctx context.Context, id string) (Resource, error) {
	for _, resource := range s.resources {
		if resource.ID == id {
			return resource, nil
		}
	}
	return Resource{}, ErrNotFound
}

func (s *resourceRepoStub) UpdateResource(ctx context.Context, resource Resource) error {
	s.updated = resource
	return nil
}

func (s *resourceRepoStub) DeleteResource(ctx context.Context, id string) error {
	return nil
}

func (s *resourceRepoStub) ListResources(ctx context.Context, agencyID string) ([]Resource, error) {
	out := make([]Resource, len(s.resources))
	copy(out, s.resources)
	return out, nil
}

func newResourceService(repo *resourceRepoStub) *ResourceService {
	return NewResourceService(repo,
		func() string { return "generated-id" },
		func() time.Time { return at(8, 0) },
	)
}

func TestResourceService_CreateResource_ValidatesKind(t *testing.T) {
	t.Parallel()

	svc := newResourceService(&resourceRepoStub{})

	_, err := svc.CreateResource(context.Background(), CreateResourceParams{
		Scope: testScope(),
		Input: ResourceInput{Name: "Crane", Kind: "helicopter"},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["kind"]; !ok {
		t.Fatalf("expected kind field error, got %v", vErr.FieldErrors)
	}
}

func TestResourceService_CreateResource_Succeeds(t *testing.T) {
	t.Parallel()

	repo := &resourceRepoStub{}
	svc := newResourceService(repo)

	reg := "AB-123-CD"
	created, err := svc.CreateResource(context.Background(), CreateResourceParams{
		Scope: testScope(),
		Input: ResourceInput{Name: "  Flatbed truck  ", Kind: "vehicle", Registration: &reg},
	})
	if err != nil {
		t.Fatalf("CreateResource returned error: %v", err)
	}
	if created.ID != "generated-id" || created.Name != "Flatbed truck" || created.AgencyID != "agency-1" {
		t.Fatalf("created = %+v", created)
	}
	if repo.created.Registration == nil || *repo.created.Registration != reg {
		t.Fatalf("persisted registration = %v", repo.created.Registration)
	}
}

func TestResourceService_GetResource_ScopeMismatchReadsAsMissing(t *testing.T) {
	t.Parallel()

	repo := &resourceRepoStub{resources: []Resource{
		{ID: "R1", AgencyID: "agency-2", Name: "Crane", Kind: "machine"},
	}}
	svc := newResourceService(repo)

	_, err := svc.GetResource(context.Background(), testScope(), "R1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResourceService_UpdateResource_AppliesChanges(t *testing.T) {
	t.Parallel()

	repo := &resourceRepoStub{resources: []Resource{
		{ID: "R1", AgencyID: "agency-1", Name: "Crane", Kind: "machine"},
	}}
	svc := newResourceService(repo)

	updated, err := svc.UpdateResource(context.Background(), UpdateResourceParams{
		Scope:      testScope(),
		ResourceID: "R1",
		Input:      ResourceInput{Name: "Tower crane", Kind: "machine"},
	})
	if err != nil {
		t.Fatalf("UpdateResource returned error: %v", err)
	}
	if updated.Name != "Tower crane" || repo.updated.Name != "Tower crane" {
		t.Fatalf("updated = %+v persisted = %+v", updated, repo.updated)
	}
}
