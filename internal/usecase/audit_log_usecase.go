package usecase

import (
	"context"
	"net/http"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"
)

// handlerから受け取る検索条件（文字列のまま）
type AuditLogQuery struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         string
	To           string
	Page         int
	Limit        int
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type AuditLogUsecase struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repository.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

func (u *AuditLogUsecase) List(ctx context.Context, q AuditLogQuery) (AuditLogListOutput, error) {
	if q.Page < 1 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if q.Limit < 1 || q.Limit > 100 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	f := repository.AuditLogFilter{
		ActorUserID: q.ActorUserID,
		ResourceID:  q.ResourceID,
		Limit:       q.Limit,
		Offset:      (q.Page - 1) * q.Limit,
	}
	if q.Action != "" {
		a := model.AuditAction(q.Action)
		f.Action = &a
	}
	if q.ResourceType != "" {
		rt := model.AuditResourceType(q.ResourceType)
		f.ResourceType = &rt
	}

	from, ok := parseDateTimeRFC3339(q.From)
	if !ok {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid from")
	}
	to, ok := parseDateTimeRFC3339(q.To)
	if !ok {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid to")
	}
	f.CreatedFrom = from
	f.CreatedTo = to

	logs, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, dbError(err)
	}
	return AuditLogListOutput{Items: logs, Total: total, Page: q.Page, Limit: q.Limit}, nil
}
