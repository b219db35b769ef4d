package email

import (
	"fmt"
	"strings"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/domain/entity"
)

// RenderReport renders one settlement report job into a deliverable mail.
func RenderReport(job *entity.ReportJob) adapter.SendReportInput {
	subject := fmt.Sprintf("%s 정산 리포트", job.YearMonth)

	text := fmt.Sprintf(
		"%s 정산 결과\n\n총 매출: %s원\n총 지출: %s원\n순이익: %s원\n",
		job.YearMonth,
		formatWon(job.TotalRevenue),
		formatWon(job.TotalExpense),
		formatWon(job.NetProfit),
	)

	html := fmt.Sprintf(`<html><body>
<h2>%s 정산 결과</h2>
<table>
<tr><td>총 매출</td><td>%s원</td></tr>
<tr><td>총 지출</td><td>%s원</td></tr>
<tr><td><strong>순이익</strong></td><td><strong>%s원</strong></td></tr>
</table>
</body></html>`,
		job.YearMonth,
		formatWon(job.TotalRevenue),
		formatWon(job.TotalExpense),
		formatWon(job.NetProfit),
	)

	return adapter.SendReportInput{
		To:      job.RecipientEmail,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}
}

// formatWon renders an integer KRW amount with thousand separators.
func formatWon(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
