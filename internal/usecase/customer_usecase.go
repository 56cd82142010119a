package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"
)

type CustomerDTO struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	LoyaltyPoints int64   `json:"loyalty_points"`
	CreatedByID   *int64  `json:"created_by_id"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

type CustomerCreateRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CustomerUpdateRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	LoyaltyPoints *int64 `json:"loyalty_points"`
}

type CustomerListOutput struct {
	Items []CustomerDTO `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type CustomerUsecase struct {
	customers repository.CustomerRepository
}

func NewCustomerUsecase(customers repository.CustomerRepository) *CustomerUsecase {
	return &CustomerUsecase{customers: customers}
}

func (u *CustomerUsecase) List(ctx context.Context, q string, page int, limit int) (CustomerListOutput, error) {
	if page < 1 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return CustomerListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	list, total, err := u.customers.List(ctx, strings.TrimSpace(q), page, limit)
	if err != nil {
		return CustomerListOutput{}, dbError(err)
	}

	out := CustomerListOutput{Items: make([]CustomerDTO, 0, len(list)), Total: total, Page: page, Limit: limit}
	for i := range list {
		out.Items = append(out.Items, toCustomerDTO(&list[i]))
	}
	return out, nil
}

func (u *CustomerUsecase) Get(ctx context.Context, id int64) (CustomerDTO, error) {
	if id <= 0 {
		return CustomerDTO{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := u.customers.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return CustomerDTO{}, &model.NotFoundError{Resource: "customer", ID: id}
	}
	if err != nil {
		return CustomerDTO{}, dbError(err)
	}
	return toCustomerDTO(&c), nil
}

func (u *CustomerUsecase) Create(ctx context.Context, actorUserID int64, req CustomerCreateRequest) (CustomerDTO, error) {
	if actorUserID <= 0 {
		return CustomerDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//入力チェック
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CustomerDTO{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if len(req.Phone) > 30 {
		return CustomerDTO{}, NewHTTPError(http.StatusBadRequest, "phone is too long")
	}

	c := model.Customer{
		Name:        name,
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		CreatedByID: &actorUserID,
	}

	created, err := u.customers.Create(ctx, c)
	if err != nil {
		return CustomerDTO{}, dbError(err)
	}
	return toCustomerDTO(&created), nil
}

func (u *CustomerUsecase) Update(ctx context.Context, id int64, req CustomerUpdateRequest) (CustomerDTO, error) {
	if id <= 0 {
		return CustomerDTO{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.customers.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return CustomerDTO{}, &model.NotFoundError{Resource: "customer", ID: id}
	}
	if err != nil {
		return CustomerDTO{}, dbError(err)
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
	}
	if req.Phone != "" {
		if len(req.Phone) > 30 {
			return CustomerDTO{}, NewHTTPError(http.StatusBadRequest, "phone is too long")
		}
		c.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Address != "" {
		c.Address = strings.TrimSpace(req.Address)
	}
	if req.LoyaltyPoints != nil {
		if *req.LoyaltyPoints < 0 {
			return CustomerDTO{}, NewHTTPError(http.StatusBadRequest, "loyalty_points must be >= 0")
		}
		c.LoyaltyPoints = *req.LoyaltyPoints
	}

	if err := u.customers.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CustomerDTO{}, &model.NotFoundError{Resource: "customer", ID: id}
		}
		return CustomerDTO{}, dbError(err)
	}
	return toCustomerDTO(&c), nil
}

func toCustomerDTO(c *model.Customer) CustomerDTO {
	dto := CustomerDTO{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		Address:       c.Address,
		LoyaltyPoints: c.LoyaltyPoints,
		CreatedByID:   c.CreatedByID,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &t
	}
	return dto
}
