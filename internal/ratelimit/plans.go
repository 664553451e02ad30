package ratelimit

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPlan     = errors.New("invalid plan prefix")
	ErrUnknownEndpoint = errors.New("unknown endpoint")
)

type Plan string

const (
	PlanFree         Plan = "test"
	PlanBasic        Plan = "basic"
	PlanPro          Plan = "pro"
	PlanProPlus      Plan = "pro+"
	PlanBusiness     Plan = "bus"
	PlanBusinessPlus Plan = "bus+"
	PlanEnterprise   Plan = "ent"
)

// Plans lists all plans in display order.
var Plans = []Plan{PlanFree, PlanBasic, PlanPro, PlanProPlus, PlanBusiness, PlanBusinessPlus, PlanEnterprise}

func (p Plan) IsValid() bool {
	_, ok := planQuotas[p]
	return ok
}

func (p Plan) String() string { return string(p) }

// DisplayName is the human-friendly plan name.
func (p Plan) DisplayName() string {
	switch p {
	case PlanFree:
		return "Free"
	case PlanBasic:
		return "Basic"
	case PlanPro:
		return "Pro"
	case PlanProPlus:
		return "Pro+"
	case PlanBusiness:
		return "Business"
	case PlanBusinessPlus:
		return "Business+"
	case PlanEnterprise:
		return "Enterprise"
	}
	return string(p)
}

type Endpoint string

const (
	EndpointFast  Endpoint = "fast"
	EndpointSlow  Endpoint = "slow"
	EndpointVisit Endpoint = "visit"
)

// Endpoints lists endpoint classes in display order.
var Endpoints = []Endpoint{EndpointFast, EndpointVisit, EndpointSlow}

func (e Endpoint) DisplayName() string {
	switch e {
	case EndpointFast:
		return "Fast Search"
	case EndpointSlow:
		return "Bulk Search"
	case EndpointVisit:
		return "URL Visits"
	}
	return string(e)
}

// Quota - Calls вызовов за Period
type Quota struct {
	Calls  int
	Period time.Duration
}

const day = 24 * time.Hour

func perMinute(n int) Quota { return Quota{Calls: n, Period: time.Minute} }
func perDay(n int) Quota    { return Quota{Calls: n, Period: day} }

// planQuotas is read-only after init.
var planQuotas = map[Plan]map[Endpoint][]Quota{
	PlanFree: {
		EndpointFast:  {perMinute(10), perDay(100)},
		EndpointVisit: {perMinute(1), perDay(10)},
		EndpointSlow:  {perMinute(1), perDay(10)},
	},
	PlanBasic: {
		EndpointFast:  {perMinute(60), perDay(1_000)},
		EndpointVisit: {perMinute(10), perDay(100)},
		EndpointSlow:  {perMinute(2), perDay(20)},
	},
	PlanPro: {
		EndpointFast:  {perMinute(120), perDay(5_000)},
		EndpointVisit: {perMinute(30), perDay(500)},
		EndpointSlow:  {perMinute(5), perDay(100)},
	},
	PlanProPlus: {
		EndpointFast:  {perMinute(360), perDay(20_000)},
		EndpointVisit: {perMinute(60), perDay(2_000)},
		EndpointSlow:  {perMinute(10), perDay(300)},
	},
	PlanBusiness: {
		EndpointFast:  {perMinute(720), perDay(60_000)},
		EndpointVisit: {perMinute(120), perDay(6_000)},
		EndpointSlow:  {perMinute(20), perDay(1_000)},
	},
	PlanBusinessPlus: {
		EndpointFast:  {perMinute(1_440), perDay(200_000)},
		EndpointVisit: {perMinute(240), perDay(20_000)},
		EndpointSlow:  {perMinute(40), perDay(3_000)},
	},
	PlanEnterprise: {
		EndpointFast:  {perMinute(3_600), perDay(1_000_000)},
		EndpointVisit: {perMinute(600), perDay(100_000)},
		EndpointSlow:  {perMinute(100), perDay(10_000)},
	},
}

// Quotas returns a copy of the endpoint quotas for plan.
func Quotas(plan Plan) (map[Endpoint][]Quota, error) {
	src, ok := planQuotas[plan]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}

	out := make(map[Endpoint][]Quota, len(src))
	for ep, qs := range src {
		out[ep] = append([]Quota(nil), qs...)
	}
	return out, nil
}

// PlanFromAPIKey extracts the plan from a "<plan>|<token>" API key.
func PlanFromAPIKey(apiKey string) (Plan, error) {
	prefix, _, _ := strings.Cut(apiKey, "|")
	plan := Plan(prefix)
	if !plan.IsValid() {
		return "", fmt.Errorf("%w: %q is not a valid plan prefix, your API key is invalid", ErrInvalidPlan, prefix)
	}
	return plan, nil
}

func quotaFor(qs []Quota, period time.Duration) (int, bool) {
	for _, q := range qs {
		if q.Period == period {
			return q.Calls, true
		}
	}
	return 0, false
}
