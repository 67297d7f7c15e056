// Package models contains GORM persistence models that have no domain
// counterpart. Aggregates carry their own GORM tags and are persisted
// directly; the join rows that link them live here.
package models
