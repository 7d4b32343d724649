package inmemdb

import (
	"context"
	"sort"

	"github.com/skillspear/skillspear/core/course"
)

type courseOfferingRepository struct {
	db *DB
}

var _ course.Repository = (*courseOfferingRepository)(nil)

func NewCourseOfferingRepository(db *DB) course.Repository {
	return &courseOfferingRepository{db: db}
}

func (repo *courseOfferingRepository) CreateOffering(_ context.Context, off course.Offering) (course.Offering, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.offerings[off.ID] = &off
	return off, nil
}

func (repo *courseOfferingRepository) GetOfferingByID(_ context.Context, id string) (course.Offering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if off, ok := repo.db.offerings[id]; ok {
		return *off, nil
	}
	return course.Offering{}, course.ErrNotFound
}

func (repo *courseOfferingRepository) QueryOfferingsByID(_ context.Context, ids []string) ([]course.Offering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	offs := make([]course.Offering, 0, len(ids))
	for _, id := range ids {
		if off, ok := repo.db.offerings[id]; ok {
			offs = append(offs, *off)
		}
	}
	return offs, nil
}

func (repo *courseOfferingRepository) QueryAllOfferings(_ context.Context) ([]course.Offering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(course.Offering) bool { return true }), nil
}

func (repo *courseOfferingRepository) QueryOfferingsByStatus(_ context.Context, status course.ApprovalStatus) ([]course.Offering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(off course.Offering) bool { return off.ApprovalStatus == status }), nil
}

func (repo *courseOfferingRepository) QueryOfferingsByOwner(_ context.Context, ownerEmail string) ([]course.Offering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(off course.Offering) bool { return off.OwnerEmail == ownerEmail }), nil
}

func (repo *courseOfferingRepository) UpdateOfferingStatus(_ context.Context, id string, status course.ApprovalStatus) (course.Offering, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	off, ok := repo.db.offerings[id]
	if !ok {
		return course.Offering{}, course.ErrNotFound
	}
	off.ApprovalStatus = status
	return *off, nil
}

func (repo *courseOfferingRepository) IncrementEnrolled(_ context.Context, id string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	off, ok := repo.db.offerings[id]
	if !ok {
		return 0, course.ErrNotFound
	}
	off.EnrolledCount++
	return off.EnrolledCount, nil
}

// query expects the caller to hold the lock.
func (repo *courseOfferingRepository) query(match func(course.Offering) bool) []course.Offering {
	offs := make([]course.Offering, 0, len(repo.db.offerings))
	for _, off := range repo.db.offerings {
		if match(*off) {
			offs = append(offs, *off)
		}
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i].CreatedAt.After(offs[j].CreatedAt) })
	return offs
}
