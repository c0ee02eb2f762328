package service

import (
	"context"
	"time"

	"github.com/qs3c/workshop_server/internal/ledger"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/metrics"
	"github.com/qs3c/workshop_server/internal/repository"
)

type WorkshopService struct {
	store *repository.Store
	now   func() time.Time
}

func NewWorkshopService(store *repository.Store) *WorkshopService {
	return &WorkshopService{
		store: store,
		now:   time.Now,
	}
}

// ListWorkshops 工作坊列表，只包含未删除的套餐
func (s *WorkshopService) ListWorkshops(ctx context.Context, includeDeleted bool) ([]*model.Workshop, error) {
	return s.store.WithContext(ctx).Workshops.List(includeDeleted)
}

// GetWorkshop 查询未删除的工作坊，已删除的套餐不返回
func (s *WorkshopService) GetWorkshop(ctx context.Context, id int64) (*model.Workshop, error) {
	workshop, err := s.store.WithContext(ctx).Workshops.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrWorkshopNotFound)
	}
	if workshop.IsDeleted {
		return nil, ErrWorkshopNotFound
	}

	live := workshop.Packages[:0]
	for _, pkg := range workshop.Packages {
		if !pkg.IsDeleted {
			live = append(live, pkg)
		}
	}
	workshop.Packages = live
	return workshop, nil
}

func (s *WorkshopService) CreateWorkshop(ctx context.Context, in *dto.WorkshopInput) (*model.Workshop, error) {
	workshop := &model.Workshop{
		Title:       in.Title,
		Instructor:  in.Instructor,
		Description: in.Description,
		Price:       roundPtr(in.Price),
		StartsAt:    in.StartsAt,
	}
	if err := s.store.WithContext(ctx).Workshops.Create(workshop); err != nil {
		return nil, err
	}
	return workshop, nil
}

func (s *WorkshopService) UpdateWorkshop(ctx context.Context, id int64, in *dto.WorkshopInput) (*model.Workshop, error) {
	store := s.store.WithContext(ctx)
	workshop, err := store.Workshops.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrWorkshopNotFound)
	}

	workshop.Title = in.Title
	workshop.Instructor = in.Instructor
	workshop.Description = in.Description
	workshop.Price = roundPtr(in.Price)
	workshop.StartsAt = in.StartsAt
	if err := store.Workshops.Update(workshop); err != nil {
		return nil, err
	}
	return workshop, nil
}

func (s *WorkshopService) DeleteWorkshop(ctx context.Context, id int64) error {
	err := s.store.WithContext(ctx).Workshops.SoftDelete(id, s.now())
	metrics.ObserveOp("delete_workshop", err)
	return notFound(err, ErrWorkshopNotFound)
}

func (s *WorkshopService) RestoreWorkshop(ctx context.Context, id int64) error {
	err := s.store.WithContext(ctx).Workshops.Restore(id)
	metrics.ObserveOp("restore_workshop", err)
	return notFound(err, ErrWorkshopNotFound)
}

func (s *WorkshopService) AddPackage(ctx context.Context, workshopID int64, in *dto.PackageInput) (*model.Package, error) {
	var pkg *model.Package

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, _, err := loadWorkshop(tx, workshopID, nil); err != nil {
			return err
		}
		pkg = &model.Package{
			WorkshopID:    workshopID,
			Name:          in.Name,
			Price:         ledger.Round2(in.Price),
			DiscountPrice: roundPtr(in.DiscountPrice),
		}
		return tx.Workshops.CreatePackage(pkg)
	})
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *WorkshopService) UpdatePackage(ctx context.Context, workshopID, packageID int64, in *dto.PackageInput) (*model.Package, error) {
	store := s.store.WithContext(ctx)
	pkg, err := ownedPackage(store, workshopID, packageID)
	if err != nil {
		return nil, err
	}

	pkg.Name = in.Name
	pkg.Price = ledger.Round2(in.Price)
	pkg.DiscountPrice = roundPtr(in.DiscountPrice)
	if err := store.Workshops.UpdatePackage(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// DeletePackage 软删除套餐，已引用该套餐的订阅显示为已删除套餐
func (s *WorkshopService) DeletePackage(ctx context.Context, workshopID, packageID int64) error {
	store := s.store.WithContext(ctx)
	if _, err := ownedPackage(store, workshopID, packageID); err != nil {
		return err
	}
	return notFound(store.Workshops.Packages.SoftDelete(packageID, s.now()), ErrPackageNotFound)
}

func (s *WorkshopService) RestorePackage(ctx context.Context, workshopID, packageID int64) error {
	store := s.store.WithContext(ctx)
	if _, err := ownedPackage(store, workshopID, packageID); err != nil {
		return err
	}
	return notFound(store.Workshops.Packages.Restore(packageID), ErrPackageNotFound)
}

func ownedPackage(store *repository.Store, workshopID, packageID int64) (*model.Package, error) {
	pkg, err := store.Workshops.GetPackage(packageID)
	if err != nil {
		return nil, notFound(err, ErrPackageNotFound)
	}
	if pkg.WorkshopID != workshopID {
		return nil, ErrPackageNotFound
	}
	return pkg, nil
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := ledger.Round2(*v)
	return &r
}
