package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ledger-bot/internal/model"
	"ledger-bot/internal/repository"
)

// TransactionTotals is the slice of the transaction repository the report
// service needs.
type TransactionTotals interface {
	TotalsByCurrency(ctx context.Context, userUUID string, since time.Time) ([]repository.CurrencyTotal, error)
}

// ReportService builds human-readable spending summaries.
type ReportService struct {
	totals TransactionTotals
	window time.Duration
}

func NewReportService(totals TransactionTotals, window time.Duration) *ReportService {
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &ReportService{totals: totals, window: window}
}

// SpendingSummary renders per-currency totals over the trailing window.
func (s *ReportService) SpendingSummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	since := now.Add(-s.window)
	totals, err := s.totals.TotalsByCurrency(ctx, user.UserUUID, since)
	if err != nil {
		return "", err
	}

	days := int(s.window.Hours() / 24)

	var builder strings.Builder
	builder.WriteString("📒 <b>Spending summary</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 last %d days, since %s\n\n", days, since.Format("2006-01-02")))

	if len(totals) == 0 {
		builder.WriteString("— no transactions logged yet\n")
		return strings.TrimSpace(builder.String()), nil
	}

	for _, t := range totals {
		code := t.CurrencyCode
		if code == "" {
			code = "???"
		}
		builder.WriteString(fmt.Sprintf("• %s %s\n", t.Total.StringFixed(2), code))
	}

	return strings.TrimSpace(builder.String()), nil
}
