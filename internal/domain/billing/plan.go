package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanID identifies a subscription plan
type PlanID string

const (
	PlanFree     PlanID = "free"
	PlanPro      PlanID = "pro"
	PlanBusiness PlanID = "business"
)

// IsValid reports whether the plan is part of the catalog
func (p PlanID) IsValid() bool {
	switch p {
	case PlanFree, PlanPro, PlanBusiness:
		return true
	}
	return false
}

// IsPaid reports whether the plan is sold through the payment provider
func (p PlanID) IsPaid() bool {
	return p == PlanPro || p == PlanBusiness
}

// Limits are the booking allowances of a plan. Zero means unlimited.
type Limits struct {
	BookingsPerMonth int
	MaxBookingLength time.Duration
	BookingHorizon   time.Duration
}

// Plan is one entry of the catalog
type Plan struct {
	ID           PlanID
	Name         string
	Description  string
	MonthlyPrice decimal.Decimal
	Limits       Limits
}

// Catalog is the ordered set of plans offered to users
type Catalog struct {
	plans []Plan
}

// DefaultCatalog returns the built-in plans
func DefaultCatalog() *Catalog {
	day := 24 * time.Hour
	return NewCatalog([]Plan{
		{
			ID:           PlanFree,
			Name:         "Free",
			Description:  "For occasional meetings",
			MonthlyPrice: decimal.Zero,
			Limits:       Limits{BookingsPerMonth: 5, MaxBookingLength: 2 * time.Hour, BookingHorizon: 14 * day},
		},
		{
			ID:           PlanPro,
			Name:         "Pro",
			Description:  "For teams that meet every day",
			MonthlyPrice: decimal.RequireFromString("19.00"),
			Limits:       Limits{BookingsPerMonth: 40, MaxBookingLength: 4 * time.Hour, BookingHorizon: 60 * day},
		},
		{
			ID:           PlanBusiness,
			Name:         "Business",
			Description:  "Unlimited bookings and long workshops",
			MonthlyPrice: decimal.RequireFromString("49.00"),
			Limits:       Limits{BookingsPerMonth: 0, MaxBookingLength: 8 * time.Hour, BookingHorizon: 180 * day},
		},
	})
}

// NewCatalog builds a catalog from the given plans, keeping their order
func NewCatalog(plans []Plan) *Catalog {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return &Catalog{plans: out}
}

// Plans returns every plan in display order
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Get looks up a plan by ID
func (c *Catalog) Get(id PlanID) (Plan, bool) {
	for _, p := range c.plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// LimitsFor returns the limits of a plan, falling back to the free plan
func (c *Catalog) LimitsFor(id PlanID) Limits {
	if p, ok := c.Get(id); ok {
		return p.Limits
	}
	if p, ok := c.Get(PlanFree); ok {
		return p.Limits
	}
	return Limits{}
}

// Override replaces the price and limits of one plan
func (c *Catalog) Override(id PlanID, price *decimal.Decimal, limits *Limits) {
	for i := range c.plans {
		if c.plans[i].ID != id {
			continue
		}
		if price != nil {
			c.plans[i].MonthlyPrice = *price
		}
		if limits != nil {
			c.plans[i].Limits = *limits
		}
	}
}
