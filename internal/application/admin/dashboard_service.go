package admin

import (
	"context"
	"time"

	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OverviewResponse is the back-office dashboard summary
type OverviewResponse struct {
	Rooms         RoomStats         `json:"rooms"`
	Users         UserStats         `json:"users"`
	Bookings      BookingStats      `json:"bookings"`
	Subscriptions SubscriptionStats `json:"subscriptions"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// RoomStats counts rooms
type RoomStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// UserStats counts profiles
type UserStats struct {
	Total  int64 `json:"total"`
	Admins int64 `json:"admins"`
}

// BookingStats counts bookings. Today and NextSevenDays count bookings
// starting in that window of the site calendar.
type BookingStats struct {
	Today         int64            `json:"today"`
	NextSevenDays int64            `json:"next_seven_days"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// SubscriptionStats counts subscriptions
type SubscriptionStats struct {
	ByPlan   map[string]int64 `json:"by_plan"`
	ByStatus map[string]int64 `json:"by_status"`
}

// DashboardService aggregates counts across the system for administrators
type DashboardService struct {
	rooms         room.RoomRepository
	profiles      identity.ProfileRepository
	bookings      booking.BookingRepository
	subscriptions billing.SubscriptionRepository
	location      *time.Location
	logger        *zap.Logger
	now           func() time.Time
}

// NewDashboardService creates a new DashboardService. location defines
// where "today" begins and ends.
func NewDashboardService(
	rooms room.RoomRepository,
	profiles identity.ProfileRepository,
	bookings booking.BookingRepository,
	subscriptions billing.SubscriptionRepository,
	location *time.Location,
	logger *zap.Logger,
) *DashboardService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		rooms:         rooms,
		profiles:      profiles,
		bookings:      bookings,
		subscriptions: subscriptions,
		location:      location,
		logger:        logger,
		now:           time.Now,
	}
}

// Overview runs the count queries concurrently and fails if any of them fails
func (s *DashboardService) Overview(ctx context.Context) (*OverviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "admin", "overview")
	defer span.End()

	now := s.now()
	local := now.In(s.location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekEnd := dayStart.AddDate(0, 0, 8)

	var (
		out           = &OverviewResponse{GeneratedAt: now.UTC()}
		roomsByStatus map[room.Status]int64
		bookingsBy    map[booking.Status]int64
		subsByPlan    map[billing.PlanID]int64
		subsByStatus  map[billing.SubscriptionStatus]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roomsByStatus, err = s.rooms.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Users.Total, err = s.profiles.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Users.Admins, err = s.profiles.CountByRole(gctx, identity.RoleAdmin)
		return err
	})
	g.Go(func() (err error) {
		out.Bookings.Today, err = s.bookings.CountStartingBetween(gctx, dayStart, dayEnd)
		return err
	})
	g.Go(func() (err error) {
		out.Bookings.NextSevenDays, err = s.bookings.CountStartingBetween(gctx, dayEnd, weekEnd)
		return err
	})
	g.Go(func() (err error) {
		bookingsBy, err = s.bookings.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		subsByPlan, err = s.subscriptions.CountByPlan(gctx)
		return err
	})
	g.Go(func() (err error) {
		subsByStatus, err = s.subscriptions.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to build dashboard overview", zap.Error(err))
		return nil, err
	}

	out.Rooms.ByStatus = stringKeys(roomsByStatus)
	for _, n := range roomsByStatus {
		out.Rooms.Total += n
	}
	out.Bookings.ByStatus = stringKeys(bookingsBy)
	out.Subscriptions.ByPlan = stringKeys(subsByPlan)
	out.Subscriptions.ByStatus = stringKeys(subsByStatus)
	return out, nil
}

func stringKeys[K ~string](in map[K]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}
