package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"

	"github.com/shopspring/decimal"
)

type DebtInput struct {
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Note         string          `json:"note"`
}

type DebtOutput struct {
	ID             int64           `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	AccountantID   int64           `json:"accountant_id"`
	Note           string          `json:"note"`
	CreatedAt      time.Time       `json:"created_at"`
}

type DebtUsecase struct {
	debts repository.DebtRepository
}

func NewDebtUsecase(debts repository.DebtRepository) *DebtUsecase {
	return &DebtUsecase{debts: debts}
}

func validateDebt(in DebtInput) error {
	if !in.Amount.IsPositive() {
		return NewHTTPError(http.StatusBadRequest, "amount must be > 0")
	}
	if in.InterestRate.IsNegative() || in.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
		return NewHTTPError(http.StatusBadRequest, "interest_rate must be between 0 and 100")
	}
	return nil
}

// accountantIDがnilなら全件
func (u *DebtUsecase) List(ctx context.Context, accountantID *int64) ([]DebtOutput, error) {
	list, err := u.debts.List(ctx, accountantID)
	if err != nil {
		return nil, dbError(err)
	}
	out := make([]DebtOutput, 0, len(list))
	for _, d := range list {
		out = append(out, toDebtOutput(d))
	}
	return out, nil
}

func (u *DebtUsecase) Get(ctx context.Context, id int64) (DebtOutput, error) {
	d, err := u.find(ctx, id)
	if err != nil {
		return DebtOutput{}, err
	}
	return toDebtOutput(d), nil
}

func (u *DebtUsecase) find(ctx context.Context, id int64) (model.Debt, error) {
	d, err := u.debts.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Debt{}, &model.NotFoundError{Resource: "debt", ID: id}
	}
	if err != nil {
		return model.Debt{}, dbError(err)
	}
	return d, nil
}

func (u *DebtUsecase) Create(ctx context.Context, accountantID int64, in DebtInput) (DebtOutput, error) {
	if err := validateDebt(in); err != nil {
		return DebtOutput{}, err
	}
	created, err := u.debts.Create(ctx, model.Debt{
		Amount:       in.Amount,
		InterestRate: in.InterestRate,
		AccountantID: accountantID,
		Note:         in.Note,
	})
	if err != nil {
		return DebtOutput{}, dbError(err)
	}
	return toDebtOutput(created), nil
}

func (u *DebtUsecase) Update(ctx context.Context, id int64, in DebtInput) (DebtOutput, error) {
	if err := validateDebt(in); err != nil {
		return DebtOutput{}, err
	}
	d, err := u.find(ctx, id)
	if err != nil {
		return DebtOutput{}, err
	}
	d.Amount = in.Amount
	d.InterestRate = in.InterestRate
	d.Note = in.Note
	if err := u.debts.Update(ctx, d); err != nil {
		return DebtOutput{}, dbError(err)
	}
	return toDebtOutput(d), nil
}

func (u *DebtUsecase) Delete(ctx context.Context, id int64) error {
	err := u.debts.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.NotFoundError{Resource: "debt", ID: id}
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

func toDebtOutput(d model.Debt) DebtOutput {
	return DebtOutput{
		ID:             d.ID,
		Amount:         d.Amount,
		InterestRate:   d.InterestRate,
		InterestAmount: d.Interest(),
		AccountantID:   d.AccountantID,
		Note:           d.Note,
		CreatedAt:      d.CreatedAt,
	}
}
