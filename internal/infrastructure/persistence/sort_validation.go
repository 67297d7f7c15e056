package persistence

import (
	"strings"

	"github.com/roombook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY clause with id as tiebreaker
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(orderBy, allowed, defaultField)
	clause := field + " " + ValidateSortOrder(orderDir)
	if field != "id" {
		clause += ", id ASC"
	}
	return clause
}

// paginate applies offset and limit when the filter asks for a page
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	if offset := filter.Offset(); offset > 0 {
		query = query.Offset(offset)
	}
	return query.Limit(filter.PageSize)
}

// ProfileSortFields contains allowed sort fields for profiles
var ProfileSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"email":        true,
	"full_name":    true,
	"role":         true,
	"status":       true,
	"last_seen_at": true,
}

// RoomSortFields contains allowed sort fields for rooms
var RoomSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"capacity":    true,
	"hourly_rate": true,
	"location":    true,
	"floor":       true,
	"status":      true,
}

// AmenitySortFields contains allowed sort fields for amenities
var AmenitySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// BookingSortFields contains allowed sort fields for bookings
var BookingSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"start_at":    true,
	"end_at":      true,
	"status":      true,
	"total_price": true,
	"reference":   true,
}

// SubscriptionSortFields contains allowed sort fields for subscriptions
var SubscriptionSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"plan":               true,
	"status":             true,
	"current_period_end": true,
}
