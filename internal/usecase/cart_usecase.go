package usecase

import (
	"context"
	"errors"
	"net/http"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カートはセッションストアに置き、DBには書かない。
type CartUsecase struct {
	store       repo.CartStore
	productRepo repo.ProductRepository
	clock       Clock
}

func NewCartUsecase(store repo.CartStore, productRepo repo.ProductRepository, clock Clock) *CartUsecase {
	return &CartUsecase{
		store:       store,
		productRepo: productRepo,
		clock:       clock,
	}
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

func (u *CartUsecase) Get(ctx context.Context, sessionID string) (model.CartSnapshot, error) {
	if sessionID == "" {
		return model.BuildCartSnapshot(model.NewCart(), nil), nil
	}
	cart, err := u.store.Get(ctx, sessionID)
	if err != nil {
		return model.CartSnapshot{}, sessionError(err)
	}
	return u.snapshot(ctx, cart)
}

// 在庫0なら入れられない。在庫数そのものとの比較は確定時に行う
func (u *CartUsecase) Add(ctx context.Context, sessionID string, in AddCartInput) (model.CartSnapshot, error) {
	if sessionID == "" {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "session required")
	}
	if in.ProductID <= 0 {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity <= 0 || in.Quantity > model.MaxCartLineQuantity {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.findAvailable(ctx, in.ProductID)
	if err != nil {
		return model.CartSnapshot{}, err
	}
	if p.Stock <= 0 {
		return model.CartSnapshot{}, &model.OutOfStockError{ProductID: p.ID, Name: p.Name}
	}

	cart, err := u.store.Get(ctx, sessionID)
	if err != nil {
		return model.CartSnapshot{}, sessionError(err)
	}
	if in.Quantity > model.MaxCartLineQuantity-cart.Quantity(p.ID) {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "quantity exceeds limit")
	}
	cart.Add(p.ID, in.Quantity)
	return u.save(ctx, sessionID, cart)
}

// 0以下は削除。在庫は見ない
func (u *CartUsecase) SetQuantity(ctx context.Context, sessionID string, productID int64, qty int64) (model.CartSnapshot, error) {
	if sessionID == "" {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "session required")
	}
	if productID <= 0 {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	if qty > model.MaxCartLineQuantity {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "quantity exceeds limit")
	}

	cart, err := u.store.Get(ctx, sessionID)
	if err != nil {
		return model.CartSnapshot{}, sessionError(err)
	}

	if qty > 0 {
		if _, err := u.findAvailable(ctx, productID); err != nil {
			return model.CartSnapshot{}, err
		}
	}
	cart.SetQuantity(productID, qty)
	return u.save(ctx, sessionID, cart)
}

// 入っていなければ何もしない
func (u *CartUsecase) Remove(ctx context.Context, sessionID string, productID int64) (model.CartSnapshot, error) {
	if sessionID == "" {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "session required")
	}
	if productID <= 0 {
		return model.CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	cart, err := u.store.Get(ctx, sessionID)
	if err != nil {
		return model.CartSnapshot{}, sessionError(err)
	}
	cart.Remove(productID)
	return u.save(ctx, sessionID, cart)
}

func (u *CartUsecase) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := u.store.Delete(ctx, sessionID); err != nil {
		return sessionError(err)
	}
	return nil
}

func (u *CartUsecase) findAvailable(ctx context.Context, productID int64) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, &model.NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	if !p.Available() {
		return model.Product{}, &model.NotFoundError{Resource: "product", ID: productID}
	}
	return p, nil
}

func (u *CartUsecase) save(ctx context.Context, sessionID string, cart model.Cart) (model.CartSnapshot, error) {
	cart.UpdatedAt = u.clock.Now()
	if err := u.store.Save(ctx, sessionID, cart); err != nil {
		return model.CartSnapshot{}, sessionError(err)
	}
	return u.snapshot(ctx, cart)
}

// 現在価格で明細を作る
func (u *CartUsecase) snapshot(ctx context.Context, cart model.Cart) (model.CartSnapshot, error) {
	products, err := u.productRepo.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return model.CartSnapshot{}, dbError(err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return model.BuildCartSnapshot(cart, byID), nil
}

func sessionError(err error) error {
	return &HTTPError{Status: http.StatusServiceUnavailable, Message: "session store error", Err: err}
}
