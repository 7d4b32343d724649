package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("course offering not found")
)

type (
	Repository interface {
		CreateOffering(ctx context.Context, off Offering) (Offering, error)
		GetOfferingByID(ctx context.Context, id string) (Offering, error)
		QueryOfferingsByID(ctx context.Context, ids []string) ([]Offering, error)
		QueryAllOfferings(ctx context.Context) ([]Offering, error)
		QueryOfferingsByStatus(ctx context.Context, status ApprovalStatus) ([]Offering, error)
		QueryOfferingsByOwner(ctx context.Context, ownerEmail string) ([]Offering, error)
		UpdateOfferingStatus(ctx context.Context, id string, status ApprovalStatus) (Offering, error)
		// IncrementEnrolled atomically adds 1 to the offering's enrolled
		// counter at the store level and returns the new value.
		IncrementEnrolled(ctx context.Context, id string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, no NewOffering) (Offering, error) {
	return svc.repo.CreateOffering(ctx, Offering{
		ID:             uuid.NewString(),
		Title:          no.Title,
		OwnerEmail:     no.OwnerEmail,
		OwnerName:      no.OwnerName,
		Description:    no.Description,
		Image:          no.Image,
		Price:          no.Price,
		ApprovalStatus: StatusPending,
		CreatedAt:      time.Now().UTC(),
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Offering, error) {
	return svc.repo.GetOfferingByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Offering, error) {
	return svc.repo.QueryAllOfferings(ctx)
}

func (svc *Service) QueryApproved(ctx context.Context) ([]Offering, error) {
	return svc.repo.QueryOfferingsByStatus(ctx, StatusApproved)
}

func (svc *Service) QueryByOwner(ctx context.Context, ownerEmail string) ([]Offering, error) {
	return svc.repo.QueryOfferingsByOwner(ctx, ownerEmail)
}

func (svc *Service) Approve(ctx context.Context, id string) (Offering, error) {
	return svc.repo.UpdateOfferingStatus(ctx, id, StatusApproved)
}

func (svc *Service) Reject(ctx context.Context, id string) (Offering, error) {
	return svc.repo.UpdateOfferingStatus(ctx, id, StatusRejected)
}
