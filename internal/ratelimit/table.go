package ratelimit

import (
	"fmt"
	"strings"
	"time"
)

// Summary is the allowance of one endpoint on one plan.
type Summary struct {
	Endpoint  Endpoint
	PerMinute int
	PerDay    int
	PerMonth  int
}

// Summarize returns per-endpoint allowances for plan. The monthly figure is
// derived as 30 days.
func Summarize(plan Plan) ([]Summary, error) {
	quotas, err := Quotas(plan)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(Endpoints))
	for _, ep := range Endpoints {
		qs := quotas[ep]
		minute, _ := quotaFor(qs, time.Minute)
		perDay, _ := quotaFor(qs, day)
		out = append(out, Summary{
			Endpoint:  ep,
			PerMinute: minute,
			PerDay:    perDay,
			PerMonth:  perDay * 30,
		})
	}
	return out, nil
}

// Table renders the allowances of every plan as fixed-width tables and marks
// current.
func Table(current Plan) string {
	var b strings.Builder
	b.WriteString("Below are the rate limits for all NOSIBLE plans.\n")
	b.WriteString("To upgrade your package, visit https://www.nosible.ai/products.\n\n")

	for _, plan := range Plans {
		marker := ""
		if plan == current {
			marker = " (Your current plan)"
		}
		fmt.Fprintf(&b, "%s:%s\n", plan.DisplayName(), marker)
		b.WriteString("| Endpoint    | Per Month | Per Day | Per Minute |\n")
		b.WriteString("| ----------- | --------- | ------- | ---------- |\n")

		rows, _ := Summarize(plan)
		for _, r := range rows {
			fmt.Fprintf(&b, "| %-11s | %9d | %7d | %10d |\n",
				r.Endpoint.DisplayName(), r.PerMonth, r.PerDay, r.PerMinute)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
