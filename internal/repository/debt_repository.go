package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
)

type DebtRepository interface {
	List(ctx context.Context, accountantID *int64) ([]model.Debt, error)
	FindByID(ctx context.Context, id int64) (model.Debt, error)
	Create(ctx context.Context, d model.Debt) (model.Debt, error)
	Update(ctx context.Context, d model.Debt) error
	Delete(ctx context.Context, id int64) error
}
