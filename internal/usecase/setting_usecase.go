package usecase

import (
	"context"
	"net/http"
	"strings"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"

	"github.com/shopspring/decimal"
)

// nilの項目は変更しない
type SettingUpdateInput struct {
	StoreName    *string          `json:"store_name"`
	ContactEmail *string          `json:"contact_email"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	DiscountRate *decimal.Decimal `json:"discount_rate"`
}

type SettingUsecase struct {
	settings  repository.SettingRepository
	auditRepo repository.AuditLogRepository
	validator AuthValidator
	clock     Clock
}

func NewSettingUsecase(settings repository.SettingRepository, auditRepo repository.AuditLogRepository, validator AuthValidator, clock Clock) *SettingUsecase {
	return &SettingUsecase{settings: settings, auditRepo: auditRepo, validator: validator, clock: clock}
}

func (u *SettingUsecase) Get(ctx context.Context) (model.SystemSetting, error) {
	s, err := u.settings.GetOrCreate(ctx)
	if err != nil {
		return model.SystemSetting{}, dbError(err)
	}
	return s, nil
}

func validRate(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}

func (u *SettingUsecase) Update(ctx context.Context, actorUserID int64, in SettingUpdateInput) (model.SystemSetting, error) {
	s, err := u.Get(ctx)
	if err != nil {
		return model.SystemSetting{}, err
	}
	before := s

	if in.StoreName != nil {
		name := strings.TrimSpace(*in.StoreName)
		if name == "" || len(name) > 255 {
			return model.SystemSetting{}, NewHTTPError(http.StatusBadRequest, "invalid store_name")
		}
		s.StoreName = name
	}
	if in.ContactEmail != nil {
		if err := u.validator.ValidateEmail(ctx, *in.ContactEmail); err != nil {
			return model.SystemSetting{}, NewHTTPError(http.StatusBadRequest, "invalid contact_email")
		}
		s.ContactEmail = strings.TrimSpace(*in.ContactEmail)
	}
	if in.TaxRate != nil {
		if !validRate(*in.TaxRate) {
			return model.SystemSetting{}, NewHTTPError(http.StatusBadRequest, "tax_rate must be between 0 and 100")
		}
		s.TaxRate = *in.TaxRate
	}
	if in.DiscountRate != nil {
		if !validRate(*in.DiscountRate) {
			return model.SystemSetting{}, NewHTTPError(http.StatusBadRequest, "discount_rate must be between 0 and 100")
		}
		s.DiscountRate = *in.DiscountRate
	}

	if err := u.settings.Save(ctx, s); err != nil {
		return model.SystemSetting{}, dbError(err)
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateSetting,
		ResourceType: model.AuditResourceSetting,
		ResourceID:   s.ID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(s),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return model.SystemSetting{}, dbError(err)
	}
	return s, nil
}
