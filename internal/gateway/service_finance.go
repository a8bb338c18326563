package gateway

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dwizi/recruit-desk/internal/store"
)

// FinancialSummary is the aggregate behind the finance reply.
type FinancialSummary struct {
	ActiveClients int
	WonClients    int
	PAFAmount     float64
	PAFRevenue    float64
	FeesThisMonth float64
	FeesAllTime   float64
	Refunds       float64
	NetRevenue    float64
}

var wonStatuses = map[string]struct{}{
	"won":       {},
	"placed":    {},
	"converted": {},
}

// SummarizeFinances aggregates client rows. A negative placement fee counts
// as a refund; the month is the display-zone calendar month of now.
func SummarizeFinances(clients []store.Client, pafAmount float64, now time.Time, location *time.Location) FinancialSummary {
	if location == nil {
		location = time.UTC
	}
	local := now.In(location)
	summary := FinancialSummary{PAFAmount: pafAmount}
	for _, client := range clients {
		status := strings.ToLower(strings.TrimSpace(client.Status))
		if status == "active" {
			summary.ActiveClients++
		}
		if _, ok := wonStatuses[status]; ok {
			summary.WonClients++
		}

		if client.RefundAmount > 0 {
			summary.Refunds += client.RefundAmount
		}
		switch {
		case client.PlacementFee < 0:
			summary.Refunds += math.Abs(client.PlacementFee)
		case client.PlacementFee > 0:
			summary.FeesAllTime += client.PlacementFee
			dated := client.PlacementDate
			if dated.IsZero() {
				dated = client.CreatedAt
			}
			dated = dated.In(location)
			if dated.Year() == local.Year() && dated.Month() == local.Month() {
				summary.FeesThisMonth += client.PlacementFee
			}
		}
	}
	summary.PAFRevenue = float64(summary.ActiveClients) * pafAmount
	summary.NetRevenue = summary.PAFRevenue + summary.FeesAllTime - summary.Refunds
	return summary
}

func (s *Service) financialSummary(ctx context.Context) string {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return s.failure("load finances", err)
	}
	now := s.now()
	summary := SummarizeFinances(clients, s.cfg.PAFAmount, now, s.cfg.Clock.Location)
	lines := []string{
		"FINANCIAL SUMMARY (" + s.cfg.Clock.In(now).Format("January 2006") + ")",
		fmt.Sprintf("PAF REVENUE: %s (%d active clients x %s)", formatAmount(summary.PAFRevenue), summary.ActiveClients, formatAmount(summary.PAFAmount)),
		"PLACEMENT FEES THIS MONTH: " + formatAmount(summary.FeesThisMonth),
		"PLACEMENT FEES ALL TIME: " + formatAmount(summary.FeesAllTime),
		"REFUNDS: -" + formatAmount(summary.Refunds),
		"NET REVENUE: " + formatAmount(summary.NetRevenue),
		fmt.Sprintf("CLIENTS: %d won, %d active", summary.WonClients, summary.ActiveClients),
	}
	return strings.Join(lines, "\n")
}

// formatAmount renders a rounded amount with thousands separators.
func formatAmount(value float64) string {
	return humanize.Comma(int64(math.Round(value)))
}
