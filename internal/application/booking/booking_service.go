package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appevent "github.com/roombook/backend/internal/application/event"
	"github.com/roombook/backend/internal/domain/billing"
	"github.com/roombook/backend/internal/domain/booking"
	"github.com/roombook/backend/internal/domain/identity"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DateLayout is the format of calendar dates in queries
const DateLayout = "2006-01-02"

// Booking service errors
var (
	ErrBookingNotAllowed = shared.NewDomainError("ACCOUNT_SUSPENDED", "Suspended accounts cannot make or change bookings")
	ErrRoomUnavailable   = shared.NewDomainError("ROOM_UNAVAILABLE", "This room is not accepting bookings")
	ErrOverCapacity      = shared.NewDomainError("OVER_CAPACITY", "Attendees exceed the room capacity")
)

// BookingService implements booking creation, changes and availability.
// Owners see and change their own bookings; admins see all of them.
type BookingService struct {
	bookings      booking.BookingRepository
	rooms         room.RoomRepository
	profiles      identity.ProfileRepository
	subscriptions billing.SubscriptionRepository
	catalog       *billing.Catalog
	site          booking.Rules
	events        *appevent.Dispatcher
	logger        *zap.Logger
	now           func() time.Time
}

// NewBookingService creates a new BookingService. site carries the slot size,
// time zone and opening hours; plan limits are added per request.
func NewBookingService(
	bookings booking.BookingRepository,
	rooms room.RoomRepository,
	profiles identity.ProfileRepository,
	subscriptions billing.SubscriptionRepository,
	catalog *billing.Catalog,
	site booking.Rules,
	events *appevent.Dispatcher,
	logger *zap.Logger,
) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if site.Location == nil {
		site.Location = time.UTC
	}
	return &BookingService{
		bookings:      bookings,
		rooms:         rooms,
		profiles:      profiles,
		subscriptions: subscriptions,
		catalog:       catalog,
		site:          site,
		events:        events,
		logger:        logger,
		now:           time.Now,
	}
}

// Create books a room for userID
func (s *BookingService) Create(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "booking", "create",
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrRoomID, req.RoomID.String(),
	)
	defer span.End()

	now := s.now()
	if err := s.ensureCanBook(ctx, userID); err != nil {
		return nil, err
	}
	r, err := s.bookableRoom(ctx, req.RoomID, req.Attendees)
	if err != nil {
		return nil, err
	}
	slot, err := shared.NewTimeRange(req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	rules, limits, err := s.rulesFor(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if err := rules.Check(slot, now); err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, userID, slot, limits); err != nil {
		return nil, err
	}
	if err := s.checkConflict(ctx, r.ID, slot, nil); err != nil {
		return nil, err
	}

	b, err := booking.NewBooking(booking.Draft{
		RoomID:           r.ID,
		UserID:           userID,
		Title:            req.Title,
		Notes:            req.Notes,
		Attendees:        req.Attendees,
		Slot:             slot,
		Price:            r.PriceFor(slot.Duration()),
		RequiresApproval: r.RequiresApproval,
	})
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBookingID, b.ID.String(),
		telemetry.SpanAttrReference, b.Reference,
	)
	s.events.Dispatch(ctx, b)

	s.logger.Info("Booking created",
		zap.String("booking_id", b.ID.String()),
		zap.String("reference", b.Reference),
		zap.String("room_id", r.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("status", string(b.Status)),
	)
	resp := toBookingResponse(b, r)
	return &resp, nil
}

// GetForUser returns a booking to its owner, or to an admin
func (s *BookingService) GetForUser(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID) (*BookingResponse, error) {
	b, err := s.visibleBooking(ctx, userID, admin, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, b), nil
}

// ListMine returns the caller's bookings. Upcoming bookings are listed
// soonest first, past ones most recent first.
func (s *BookingService) ListMine(ctx context.Context, userID uuid.UUID, f MyBookingsFilter) ([]BookingResponse, int64, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.OrderBy = "start_at"
	now := s.now()
	switch f.Scope {
	case "", "upcoming":
		filter.OrderDir = "asc"
		filter = filter.With(booking.FilterFrom, now)
	case "past":
		filter.OrderDir = "desc"
		filter = filter.With(booking.FilterTo, now)
	default:
		filter.OrderDir = "desc"
	}
	if f.Status != "" {
		filter = filter.With(booking.FilterStatus, booking.Status(f.Status))
	}

	bookings, total, err := s.bookings.FindForUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.respondAll(ctx, bookings), total, nil
}

// Cancel cancels a booking. Owners can only cancel before the start; admins
// can always cancel.
func (s *BookingService) Cancel(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID, req CancelBookingRequest) (*BookingResponse, error) {
	b, err := s.visibleBooking(ctx, userID, admin, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if b.IsOwnedBy(userID) {
		err = b.CancelByOwner(req.Reason, now)
	} else {
		err = b.CancelByAdmin(userID, req.Reason, now)
	}
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, b)

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", b.ID.String()),
		zap.String("by", userID.String()),
	)
	return s.respond(ctx, b), nil
}

// AdminCancel cancels any active booking on behalf of an admin
func (s *BookingService) AdminCancel(ctx context.Context, adminID, id uuid.UUID, req CancelBookingRequest) (*BookingResponse, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.CancelByAdmin(adminID, req.Reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, b)

	s.logger.Info("Booking cancelled by admin",
		zap.String("booking_id", b.ID.String()),
		zap.String("admin_id", adminID.String()),
	)
	return s.respond(ctx, b), nil
}

// Update edits the details of the caller's booking and reschedules it when
// the range changed. A new range goes through the same checks as Create,
// with the booking itself excluded from the conflict check.
func (s *BookingService) Update(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID, req UpdateBookingRequest) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "booking", "update",
		telemetry.SpanAttrBookingID, id.String(),
		telemetry.SpanAttrUserID, userID.String(),
	)
	defer span.End()

	b, err := s.visibleBooking(ctx, userID, admin, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCanBook(ctx, b.UserID); err != nil {
		return nil, err
	}
	r, err := s.rooms.FindByID(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	if req.Attendees > r.Capacity {
		return nil, ErrOverCapacity
	}

	slot, err := shared.NewTimeRange(req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !slot.Start.Equal(b.StartAt) || !slot.End.Equal(b.EndAt) {
		if !r.IsBookable() {
			return nil, ErrRoomUnavailable
		}
		rules, limits, err := s.rulesFor(ctx, b.UserID, now)
		if err != nil {
			return nil, err
		}
		if err := rules.Check(slot, now); err != nil {
			return nil, err
		}
		// within its month the booking is already counted
		if !s.sameQuotaMonth(b.StartAt, slot.Start) {
			if err := s.checkQuota(ctx, b.UserID, slot, limits); err != nil {
				return nil, err
			}
		}
		if err := s.checkConflict(ctx, b.RoomID, slot, &b.ID); err != nil {
			return nil, err
		}
		if err := b.Reschedule(slot, r.PriceFor(slot.Duration()), now); err != nil {
			return nil, err
		}
	}
	if err := b.UpdateDetails(req.Title, req.Notes, req.Attendees); err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.events.Dispatch(ctx, b)

	resp := toBookingResponse(b, r)
	return &resp, nil
}

// Availability lists the slots of one room on a calendar day in the site time zone
func (s *BookingService) Availability(ctx context.Context, roomID uuid.UUID, date string) (*AvailabilityResponse, error) {
	r, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.Status == room.StatusInactive {
		return nil, shared.ErrNotFound
	}
	day, err := time.ParseInLocation(DateLayout, date, s.site.Location)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DATE", "Date must be formatted as YYYY-MM-DD")
	}

	resp := &AvailabilityResponse{
		RoomID:      r.ID,
		Date:        date,
		Timezone:    s.site.Location.String(),
		SlotMinutes: int(s.site.Slot / time.Minute),
		Slots:       []booking.Slot{},
	}
	window := s.site.OpeningHours.Window(day, s.site.Location)
	busy, err := s.bookings.FindActiveForRoomBetween(ctx, r.ID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	ranges := make([]shared.TimeRange, len(busy))
	for i := range busy {
		ranges[i] = busy[i].Range()
	}
	resp.Slots = booking.BuildDaySlots(day, s.site, ranges, s.now())
	if !r.IsBookable() {
		for i := range resp.Slots {
			resp.Slots[i].Available = false
		}
	}
	return resp, nil
}

// List returns bookings for the back-office
func (s *BookingService) List(ctx context.Context, f AdminBookingFilter) ([]BookingResponse, int64, error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "start_at"
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search

	if f.RoomID != "" {
		id, err := uuid.Parse(f.RoomID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_ROOM", "Invalid room ID")
		}
		filter = filter.With(booking.FilterRoomID, id)
	}
	if f.UserID != "" {
		id, err := uuid.Parse(f.UserID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_USER", "Invalid user ID")
		}
		filter = filter.With(booking.FilterUserID, id)
	}
	if f.Status != "" {
		filter = filter.With(booking.FilterStatus, booking.Status(f.Status))
	}
	if f.From != "" {
		from, err := time.ParseInLocation(DateLayout, f.From, s.site.Location)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_DATE", "from must be formatted as YYYY-MM-DD")
		}
		filter = filter.With(booking.FilterFrom, from)
	}
	if f.To != "" {
		to, err := time.ParseInLocation(DateLayout, f.To, s.site.Location)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_DATE", "to must be formatted as YYYY-MM-DD")
		}
		// inclusive calendar day
		filter = filter.With(booking.FilterTo, to.AddDate(0, 0, 1))
	}

	bookings, total, err := s.bookings.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.respondAll(ctx, bookings), total, nil
}

// Get returns any booking for the back-office
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*BookingResponse, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, b), nil
}

// Confirm approves a pending booking
func (s *BookingService) Confirm(ctx context.Context, adminID, id uuid.UUID) (*BookingResponse, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Confirm(s.now()); err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, b)

	s.logger.Info("Booking confirmed",
		zap.String("booking_id", b.ID.String()),
		zap.String("admin_id", adminID.String()),
	)
	return s.respond(ctx, b), nil
}

// Delete removes a booking record. Active bookings must be cancelled first
// so that the owner is notified through the cancellation event.
func (s *BookingService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status.IsActive() && !b.HasStarted(s.now()) {
		return shared.NewDomainError("INVALID_STATE", "Cancel upcoming bookings before deleting them")
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Booking deleted",
		zap.String("booking_id", id.String()),
		zap.String("admin_id", adminID.String()),
	)
	return nil
}

// CompletePast marks every confirmed booking that has ended as completed
func (s *BookingService) CompletePast(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "booking", "complete_past")
	defer span.End()

	n, err := s.bookings.CompletePast(ctx, s.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}
	telemetry.SetAttributes(span, "bookings.completed", n)
	return n, nil
}

// visibleBooking loads a booking the caller may see. Other users' bookings
// are reported as missing rather than forbidden.
func (s *BookingService) visibleBooking(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID) (*booking.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && !b.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (s *BookingService) ensureCanBook(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !profile.CanBook() {
		return ErrBookingNotAllowed
	}
	return nil
}

func (s *BookingService) bookableRoom(ctx context.Context, roomID uuid.UUID, attendees int) (*room.Room, error) {
	r, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !r.IsBookable() {
		return nil, ErrRoomUnavailable
	}
	if attendees > r.Capacity {
		return nil, ErrOverCapacity
	}
	return r, nil
}

// rulesFor combines the site rules with the limits of the user's effective plan
func (s *BookingService) rulesFor(ctx context.Context, userID uuid.UUID, now time.Time) (booking.Rules, billing.Limits, error) {
	plan := billing.PlanFree
	sub, err := s.subscriptions.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		plan = sub.EffectivePlan(now)
	case !errors.Is(err, shared.ErrNotFound):
		return booking.Rules{}, billing.Limits{}, err
	}

	limits := s.catalog.LimitsFor(plan)
	rules := s.site
	rules.MaxDuration = limits.MaxBookingLength
	rules.Horizon = limits.BookingHorizon
	return rules, limits, nil
}

// checkQuota counts the user's bookings in the calendar month of the slot start
func (s *BookingService) checkQuota(ctx context.Context, userID uuid.UUID, slot shared.TimeRange, limits billing.Limits) error {
	if limits.BookingsPerMonth <= 0 {
		return nil
	}
	local := slot.Start.In(s.site.Location)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.site.Location)
	monthEnd := monthStart.AddDate(0, 1, 0)

	count, err := s.bookings.CountForUserBetween(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if count >= int64(limits.BookingsPerMonth) {
		return shared.NewDomainError(shared.ErrQuotaExceeded.Code,
			fmt.Sprintf("Your plan allows %d bookings per month", limits.BookingsPerMonth))
	}
	return nil
}

func (s *BookingService) sameQuotaMonth(a, b time.Time) bool {
	a, b = a.In(s.site.Location), b.In(s.site.Location)
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func (s *BookingService) checkConflict(ctx context.Context, roomID uuid.UUID, slot shared.TimeRange, excludeID *uuid.UUID) error {
	overlapping, err := s.bookings.FindOverlapping(ctx, roomID, slot, excludeID)
	if err != nil {
		return err
	}
	existing := make([]shared.TimeRange, len(overlapping))
	for i := range overlapping {
		existing[i] = overlapping[i].Range()
	}
	if _, taken := booking.CheckConflict(slot, existing); taken {
		return booking.ErrSlotTaken
	}
	return nil
}

func (s *BookingService) respond(ctx context.Context, b *booking.Booking) *BookingResponse {
	r, err := s.rooms.FindByID(ctx, b.RoomID)
	if err != nil {
		s.logger.Warn("Failed to load room of booking",
			zap.String("booking_id", b.ID.String()), zap.Error(err))
	}
	resp := toBookingResponse(b, r)
	return &resp
}

func (s *BookingService) respondAll(ctx context.Context, bookings []booking.Booking) []BookingResponse {
	rooms := make(map[uuid.UUID]*room.Room)
	out := make([]BookingResponse, len(bookings))
	for i := range bookings {
		r, ok := rooms[bookings[i].RoomID]
		if !ok {
			found, err := s.rooms.FindByID(ctx, bookings[i].RoomID)
			if err != nil {
				s.logger.Warn("Failed to load room of booking",
					zap.String("booking_id", bookings[i].ID.String()), zap.Error(err))
			} else {
				r = found
			}
			rooms[bookings[i].RoomID] = r
		}
		out[i] = toBookingResponse(&bookings[i], r)
	}
	return out
}
