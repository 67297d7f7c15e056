package billing

import (
	"fmt"
	"time"

	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
)

// BuildCatalog applies configured price and limit overrides to the built-in plans
func BuildCatalog(overrides map[string]config.PlanOverride) (*billing.Catalog, error) {
	catalog := billing.DefaultCatalog()
	for id, o := range overrides {
		planID := billing.PlanID(id)
		plan, ok := catalog.Get(planID)
		if !ok {
			return nil, fmt.Errorf("unknown plan %q in plan overrides", id)
		}

		var price *decimal.Decimal
		if o.MonthlyPrice != nil {
			p, err := decimal.NewFromString(*o.MonthlyPrice)
			if err != nil {
				return nil, fmt.Errorf("plans.%s.monthly_price: %w", id, err)
			}
			if p.IsNegative() {
				return nil, fmt.Errorf("plans.%s.monthly_price cannot be negative", id)
			}
			price = &p
		}

		limits := plan.Limits
		if o.BookingsPerMonth != nil {
			limits.BookingsPerMonth = *o.BookingsPerMonth
		}
		if o.MaxBookingHours != nil {
			limits.MaxBookingLength = time.Duration(*o.MaxBookingHours) * time.Hour
		}
		if o.HorizonDays != nil {
			limits.BookingHorizon = time.Duration(*o.HorizonDays) * 24 * time.Hour
		}
		catalog.Override(planID, price, &limits)
	}
	return catalog, nil
}
