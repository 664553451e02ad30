package ratelimit

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPlanFromAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    Plan
		wantErr bool
	}{
		{"free plan", "test|xyz", PlanFree, false},
		{"pro plus", "pro+|abc|def", PlanProPlus, false},
		{"enterprise", "ent|token", PlanEnterprise, false},
		{"unknown prefix", "test+|xyz", "", true},
		{"no separator", "basic", PlanBasic, false},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanFromAPIKey(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPlan) {
					t.Errorf("PlanFromAPIKey(%q) error = %v, want ErrInvalidPlan", tt.key, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlanFromAPIKey(%q) unexpected error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("PlanFromAPIKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestQuotas_EveryPlanIsComplete(t *testing.T) {
	for _, plan := range Plans {
		quotas, err := Quotas(plan)
		if err != nil {
			t.Fatalf("Quotas(%s) error = %v", plan, err)
		}
		for _, ep := range Endpoints {
			qs, ok := quotas[ep]
			if !ok || len(qs) == 0 {
				t.Errorf("plan %s has no quotas for %s", plan, ep)
				continue
			}
			seen := make(map[time.Duration]bool)
			for _, q := range qs {
				if q.Calls <= 0 {
					t.Errorf("plan %s/%s has non-positive quota %+v", plan, ep, q)
				}
				if seen[q.Period] {
					t.Errorf("plan %s/%s repeats period %v", plan, ep, q.Period)
				}
				seen[q.Period] = true
			}
		}
	}
}

func TestQuotas_ReturnsCopy(t *testing.T) {
	quotas, _ := Quotas(PlanFree)
	quotas[EndpointFast][0].Calls = 1_000_000

	again, _ := Quotas(PlanFree)
	if again[EndpointFast][0].Calls == 1_000_000 {
		t.Error("Quotas() must not expose the registry")
	}
}

func TestQuotas_UnknownPlan(t *testing.T) {
	if _, err := Quotas("gold"); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("Quotas(gold) error = %v, want ErrInvalidPlan", err)
	}
}

func TestSummarize_Free(t *testing.T) {
	rows, err := Summarize(PlanFree)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	var fast Summary
	for _, r := range rows {
		if r.Endpoint == EndpointFast {
			fast = r
		}
	}

	if fast.PerMinute != 10 {
		t.Errorf("PerMinute = %d, want 10", fast.PerMinute)
	}
	if fast.PerDay != 100 {
		t.Errorf("PerDay = %d, want 100", fast.PerDay)
	}
	if fast.PerMonth != 3000 {
		t.Errorf("PerMonth = %d, want 3000", fast.PerMonth)
	}
}

func TestTable(t *testing.T) {
	out := Table(PlanFree)

	wantLines := []string{
		"Free: (Your current plan)",
		"| Endpoint    | Per Month | Per Day | Per Minute |",
		"| Fast Search |      3000 |     100 |         10 |",
		"| URL Visits  |       300 |      10 |          1 |",
		"| Bulk Search |       300 |      10 |          1 |",
		"Enterprise:",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("Table() missing line %q\n%s", line, out)
		}
	}

	if strings.Count(out, "(Your current plan)") != 1 {
		t.Error("Table() should mark exactly one plan as current")
	}
	if strings.Contains(out, "Basic: (Your current plan)") {
		t.Error("Table() marked the wrong plan")
	}
}
