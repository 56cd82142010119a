package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"
)

type CounterInput struct {
	Location           string  `json:"location"`
	AssignedEmployeeID *int64  `json:"assigned_employee_id"`
	ManagerID          *int64  `json:"manager_id"`
	ProductIDs         []int64 `json:"product_ids"`
}

type CounterUsecase struct {
	counters repository.CounterRepository
	users    repository.UserRepository
}

func NewCounterUsecase(counters repository.CounterRepository, users repository.UserRepository) *CounterUsecase {
	return &CounterUsecase{counters: counters, users: users}
}

func (u *CounterUsecase) List(ctx context.Context) ([]model.Counter, error) {
	list, err := u.counters.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

func (u *CounterUsecase) Get(ctx context.Context, id int64) (model.Counter, error) {
	c, err := u.counters.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Counter{}, &model.NotFoundError{Resource: "counter", ID: id}
	}
	if err != nil {
		return model.Counter{}, dbError(err)
	}
	return c, nil
}

// 担当者と責任者のロールを確認する
func (u *CounterUsecase) checkStaff(ctx context.Context, userID *int64, want model.Role, field string) error {
	if userID == nil {
		return nil
	}
	user, err := u.users.FindByID(ctx, *userID)
	if err != nil {
		return dbError(err)
	}
	if user == nil {
		return &model.NotFoundError{Resource: "user", ID: *userID}
	}
	if user.Role != want {
		return NewHTTPError(http.StatusBadRequest, field+" must be "+string(want))
	}
	return nil
}

func (u *CounterUsecase) validate(ctx context.Context, in CounterInput) error {
	if strings.TrimSpace(in.Location) == "" {
		return NewHTTPError(http.StatusBadRequest, "location is required")
	}
	if err := u.checkStaff(ctx, in.AssignedEmployeeID, model.RoleSalesStaff, "assigned_employee"); err != nil {
		return err
	}
	return u.checkStaff(ctx, in.ManagerID, model.RoleStoreManager, "manager")
}

func (u *CounterUsecase) Create(ctx context.Context, in CounterInput) (model.Counter, error) {
	if err := u.validate(ctx, in); err != nil {
		return model.Counter{}, err
	}

	created, err := u.counters.Create(ctx, model.Counter{
		Location:           strings.TrimSpace(in.Location),
		AssignedEmployeeID: in.AssignedEmployeeID,
		ManagerID:          in.ManagerID,
	})
	if err != nil {
		return model.Counter{}, dbError(err)
	}

	if len(in.ProductIDs) > 0 {
		if err := u.counters.ReplaceProducts(ctx, created.ID, in.ProductIDs); err != nil {
			return model.Counter{}, dbError(err)
		}
	}
	return u.Get(ctx, created.ID)
}

func (u *CounterUsecase) Update(ctx context.Context, id int64, in CounterInput) (model.Counter, error) {
	if err := u.validate(ctx, in); err != nil {
		return model.Counter{}, err
	}

	c, err := u.Get(ctx, id)
	if err != nil {
		return model.Counter{}, err
	}
	c.Location = strings.TrimSpace(in.Location)
	c.AssignedEmployeeID = in.AssignedEmployeeID
	c.ManagerID = in.ManagerID

	if err := u.counters.Update(ctx, c); err != nil {
		return model.Counter{}, dbError(err)
	}
	if in.ProductIDs != nil {
		if err := u.counters.ReplaceProducts(ctx, id, in.ProductIDs); err != nil {
			return model.Counter{}, dbError(err)
		}
	}
	return u.Get(ctx, id)
}

func (u *CounterUsecase) Delete(ctx context.Context, id int64) error {
	err := u.counters.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.NotFoundError{Resource: "counter", ID: id}
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}
