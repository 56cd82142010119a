package usecase

import (
	"context"
	"net/http"
	"time"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardOutput struct {
	SalesToday     decimal.Decimal             `json:"sales_today"`
	SalesThisMonth decimal.Decimal             `json:"sales_this_month"`
	OrdersByStatus map[model.OrderStatus]int64 `json:"orders_by_status"`
	ActiveProducts int64                       `json:"active_products"`
	GeneratedAt    time.Time                   `json:"generated_at"`
}

type SalesReportOutput struct {
	From  time.Time       `json:"from"`
	To    time.Time       `json:"to"`
	Total decimal.Decimal `json:"total"`
}

// 売上はpaidの注文だけ数える（返金済みは除く）
var salesStatuses = []model.OrderStatus{model.OrderStatusPaid}

type ReportUsecase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	clock    Clock
}

func NewReportUsecase(orders repository.OrderRepository, products repository.ProductRepository, clock Clock) *ReportUsecase {
	return &ReportUsecase{orders: orders, products: products, clock: clock}
}

func (u *ReportUsecase) Dashboard(ctx context.Context) (DashboardOutput, error) {
	now := u.clock.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := u.orders.SumTotalsInRange(ctx, dayStart, dayStart.AddDate(0, 0, 1), salesStatuses)
	if err != nil {
		return DashboardOutput{}, dbError(err)
	}
	month, err := u.orders.SumTotalsInRange(ctx, monthStart, monthStart.AddDate(0, 1, 0), salesStatuses)
	if err != nil {
		return DashboardOutput{}, dbError(err)
	}
	counts, err := u.orders.CountByStatus(ctx)
	if err != nil {
		return DashboardOutput{}, dbError(err)
	}
	active, err := u.products.CountActive(ctx)
	if err != nil {
		return DashboardOutput{}, dbError(err)
	}

	return DashboardOutput{
		SalesToday:     today,
		SalesThisMonth: month,
		OrdersByStatus: counts,
		ActiveProducts: active,
		GeneratedAt:    now,
	}, nil
}

// from/toはRFC3339。省略時は直近30日
func (u *ReportUsecase) Sales(ctx context.Context, fromStr string, toStr string) (SalesReportOutput, error) {
	from, ok := parseDateTimeRFC3339(fromStr)
	if !ok {
		return SalesReportOutput{}, NewHTTPError(http.StatusBadRequest, "invalid from")
	}
	to, ok := parseDateTimeRFC3339(toStr)
	if !ok {
		return SalesReportOutput{}, NewHTTPError(http.StatusBadRequest, "invalid to")
	}

	end := u.clock.Now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}
	if !start.Before(end) {
		return SalesReportOutput{}, NewHTTPError(http.StatusBadRequest, "from must be before to")
	}

	total, err := u.orders.SumTotalsInRange(ctx, start, end, salesStatuses)
	if err != nil {
		return SalesReportOutput{}, dbError(err)
	}
	return SalesReportOutput{From: start, To: end, Total: total}, nil
}
