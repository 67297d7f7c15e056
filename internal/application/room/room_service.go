package room

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/application/media"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"github.com/roombook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RoomCache stores public room reads. Implemented by cache.RedisRoomCache
// and cache.NoopRoomCache.
//
// Get reports the cache generation it looked in. A value loaded after a miss
// is stored with Set under that generation, never the current one, so an
// Invalidate that happens during the load hides the stale value.
type RoomCache interface {
	Get(ctx context.Context, key string, dest any) (hit bool, generation int64, err error)
	Set(ctx context.Context, generation int64, key string, value any) error
	Invalidate(ctx context.Context) error
}

// FutureBookingChecker reports whether a room still has upcoming bookings
type FutureBookingChecker interface {
	HasFutureForRoom(ctx context.Context, roomID uuid.UUID, now time.Time) (bool, error)
}

// Room service errors
var (
	ErrSlugTaken       = shared.NewDomainError("ALREADY_EXISTS", "Room with this slug already exists")
	ErrUnknownAmenity  = shared.NewDomainError("INVALID_AMENITY", "One or more amenities do not exist")
	ErrRoomHasBookings = shared.NewDomainError("ROOM_HAS_BOOKINGS", "Room has upcoming bookings; cancel them or deactivate the room instead")
)

// RoomService handles the room catalog. Public reads only see active rooms
// and go through the cache; admin reads and writes go to the repository.
type RoomService struct {
	rooms     room.RoomRepository
	amenities room.AmenityRepository
	bookings  FutureBookingChecker
	uploader  *media.Uploader
	cache     RoomCache
	logger    *zap.Logger
	now       func() time.Time
}

// NewRoomService creates a new RoomService
func NewRoomService(
	rooms room.RoomRepository,
	amenities room.AmenityRepository,
	bookings FutureBookingChecker,
	uploader *media.Uploader,
	cache RoomCache,
	logger *zap.Logger,
) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{
		rooms:     rooms,
		amenities: amenities,
		bookings:  bookings,
		uploader:  uploader,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// Create adds a room to the catalog
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "room", "create")
	defer span.End()

	r, err := room.NewRoom(req.details())
	if err != nil {
		return nil, err
	}
	if req.Slug != "" {
		if err := r.RenameSlug(req.Slug); err != nil {
			return nil, err
		}
	}
	if err := s.ensureSlugFree(ctx, r.Slug); err != nil {
		return nil, err
	}
	if len(req.AmenityIDs) > 0 {
		if err := s.ensureAmenitiesExist(ctx, req.AmenityIDs); err != nil {
			return nil, err
		}
		r.SetAmenities(req.AmenityIDs)
	}

	if err := s.rooms.Save(ctx, r); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRoomID, r.ID.String())
	s.invalidate(ctx)

	s.logger.Info("Room created",
		zap.String("room_id", r.ID.String()),
		zap.String("slug", r.Slug),
	)
	return s.respond(ctx, r)
}

// Get returns a room. Public callers get NOT_FOUND for rooms that are not active.
func (s *RoomService) Get(ctx context.Context, id uuid.UUID, admin bool) (*RoomResponse, error) {
	if admin {
		r, err := s.rooms.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.respond(ctx, r)
	}
	return s.cachedRoom(ctx, "id:"+id.String(), func() (*room.Room, error) {
		return s.rooms.FindByID(ctx, id)
	})
}

// GetBySlug returns an active room by its slug
func (s *RoomService) GetBySlug(ctx context.Context, slug string) (*RoomResponse, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	return s.cachedRoom(ctx, "slug:"+slug, func() (*room.Room, error) {
		return s.rooms.FindBySlug(ctx, slug)
	})
}

func (s *RoomService) cachedRoom(ctx context.Context, key string, load func() (*room.Room, error)) (*RoomResponse, error) {
	var cached RoomResponse
	hit, gen := s.cacheGet(ctx, key, &cached)
	if hit {
		return &cached, nil
	}
	r, err := load()
	if err != nil {
		return nil, err
	}
	if r.Status != room.StatusActive {
		return nil, shared.ErrNotFound
	}
	resp, err := s.respond(ctx, r)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, gen, key, resp)
	return resp, nil
}

// List returns a page of rooms. Public callers only see active rooms and
// the status filter is ignored for them.
func (s *RoomService) List(ctx context.Context, f RoomListFilter, admin bool) (*RoomListResult, error) {
	filter, err := f.toFilter(admin)
	if err != nil {
		return nil, err
	}

	var (
		key string
		gen = noGeneration
	)
	if !admin {
		key = f.cacheKey()
		var cached RoomListResult
		var hit bool
		if hit, gen = s.cacheGet(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	rooms, total, err := s.rooms.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	amenities, err := s.amenityIndex(ctx, rooms...)
	if err != nil {
		return nil, err
	}
	result := &RoomListResult{Items: make([]RoomResponse, len(rooms)), Total: total}
	for i := range rooms {
		result.Items[i] = toRoomResponse(&rooms[i], s.uploader.DownloadURL(ctx, rooms[i].ImageKey), amenities)
	}

	if !admin {
		s.cacheSet(ctx, gen, key, result)
	}
	return result, nil
}

// Update replaces the descriptive fields and optionally the slug
func (s *RoomService) Update(ctx context.Context, id uuid.UUID, req UpdateRoomRequest) (*RoomResponse, error) {
	r, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Update(req.details()); err != nil {
		return nil, err
	}
	if req.Slug != "" && req.Slug != r.Slug {
		if err := r.RenameSlug(req.Slug); err != nil {
			return nil, err
		}
		if err := s.ensureSlugFree(ctx, r.Slug); err != nil {
			return nil, err
		}
	}
	if err := s.rooms.Save(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.respond(ctx, r)
}

// SetStatus opens, closes or puts a room in maintenance. Existing bookings
// are kept; only new bookings are refused.
func (s *RoomService) SetStatus(ctx context.Context, id uuid.UUID, req SetStatusRequest) (*RoomResponse, error) {
	r, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.ChangeStatus(room.Status(req.Status)); err != nil {
		return nil, err
	}
	if err := s.rooms.Save(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("Room status changed",
		zap.String("room_id", r.ID.String()),
		zap.String("status", string(r.Status)),
	)
	return s.respond(ctx, r)
}

// SetAmenities replaces the amenity set of a room
func (s *RoomService) SetAmenities(ctx context.Context, id uuid.UUID, req SetAmenitiesRequest) (*RoomResponse, error) {
	r, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAmenitiesExist(ctx, req.AmenityIDs); err != nil {
		return nil, err
	}
	r.SetAmenities(req.AmenityIDs)
	if err := s.rooms.Save(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.respond(ctx, r)
}

// Delete removes a room that has no upcoming bookings
func (s *RoomService) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return err
	}
	busy, err := s.bookings.HasFutureForRoom(ctx, id, s.now())
	if err != nil {
		return err
	}
	if busy {
		return ErrRoomHasBookings
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.uploader.Remove(ctx, r.ImageKey)

	s.logger.Info("Room deleted", zap.String("room_id", id.String()))
	return nil
}

// CreateImageUploadURL returns a presigned URL for a new room image
func (s *RoomService) CreateImageUploadURL(ctx context.Context, id uuid.UUID, req ImageUploadRequest) (*media.UploadURL, error) {
	if _, err := s.rooms.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.uploader.CreateImageUpload(ctx, media.PrefixRooms, id, req.ContentType, req.Size)
}

// ConfirmImage points the room at an uploaded image and removes the previous one
func (s *RoomService) ConfirmImage(ctx context.Context, id uuid.UUID, req ConfirmImageRequest) (*RoomResponse, error) {
	if err := s.uploader.Confirm(ctx, media.PrefixRooms, id, req.StorageKey); err != nil {
		return nil, err
	}
	r, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := r.ImageKey
	if err := r.SetImage(req.StorageKey); err != nil {
		return nil, err
	}
	if err := s.rooms.Save(ctx, r); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	if previous != req.StorageKey {
		s.uploader.Remove(ctx, previous)
	}
	return s.respond(ctx, r)
}

// RemoveImage clears the room image
func (s *RoomService) RemoveImage(ctx context.Context, id uuid.UUID) (*RoomResponse, error) {
	r, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if previous := r.ImageKey; previous != "" {
		r.ClearImage()
		if err := s.rooms.Save(ctx, r); err != nil {
			return nil, err
		}
		s.invalidate(ctx)
		s.uploader.Remove(ctx, previous)
	}
	return s.respond(ctx, r)
}

func (s *RoomService) respond(ctx context.Context, r *room.Room) (*RoomResponse, error) {
	amenities, err := s.amenityIndex(ctx, *r)
	if err != nil {
		return nil, err
	}
	resp := toRoomResponse(r, s.uploader.DownloadURL(ctx, r.ImageKey), amenities)
	return &resp, nil
}

// amenityIndex loads the amenities of all given rooms in one query
func (s *RoomService) amenityIndex(ctx context.Context, rooms ...room.Room) (map[uuid.UUID]*room.Amenity, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for i := range rooms {
		for _, id := range rooms[i].AmenityIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	index := make(map[uuid.UUID]*room.Amenity, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	amenities, err := s.amenities.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range amenities {
		index[amenities[i].ID] = &amenities[i]
	}
	return index, nil
}

func (s *RoomService) ensureSlugFree(ctx context.Context, slug string) error {
	exists, err := s.rooms.ExistsBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return ErrSlugTaken
	}
	return nil
}

func (s *RoomService) ensureAmenitiesExist(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	found, err := s.amenities.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(unique) {
		return ErrUnknownAmenity
	}
	return nil
}

// noGeneration marks a load whose cache generation is unknown; its result is
// not cached
const noGeneration int64 = -1

func (s *RoomService) cacheGet(ctx context.Context, key string, dest any) (bool, int64) {
	hit, gen, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Room cache read failed", zap.String("key", key), zap.Error(err))
		return false, noGeneration
	}
	return hit, gen
}

func (s *RoomService) cacheSet(ctx context.Context, gen int64, key string, value any) {
	if gen == noGeneration {
		return
	}
	if err := s.cache.Set(ctx, gen, key, value); err != nil {
		s.logger.Warn("Room cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RoomService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate room cache", zap.Error(err))
	}
}

func (f RoomListFilter) toFilter(admin bool) (shared.Filter, error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
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
	filter.Search = strings.TrimSpace(f.Search)

	switch {
	case !admin:
		filter = filter.With(room.FilterStatus, room.StatusActive)
	case f.Status != "":
		filter = filter.With(room.FilterStatus, room.Status(f.Status))
	}
	if f.MinCapacity > 0 {
		filter = filter.With(room.FilterMinCapacity, f.MinCapacity)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		filter = filter.With(room.FilterLocation, loc)
	}
	if len(f.AmenityIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(f.AmenityIDs))
		for _, raw := range f.AmenityIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return filter, shared.NewDomainError("INVALID_AMENITY", "Invalid amenity ID: "+raw)
			}
			ids = append(ids, id)
		}
		filter = filter.With(room.FilterAmenityIDs, ids)
	}
	return filter, nil
}

// cacheKey identifies a public list query independent of amenity order
func (f RoomListFilter) cacheKey() string {
	amenities := append([]string(nil), f.AmenityIDs...)
	sort.Strings(amenities)
	return fmt.Sprintf("list:%s|%d|%s|%s|%d|%d|%s|%s",
		strings.ToLower(strings.TrimSpace(f.Search)),
		f.MinCapacity,
		strings.ToLower(strings.TrimSpace(f.Location)),
		strings.Join(amenities, ","),
		f.Page, f.PageSize, f.OrderBy, f.OrderDir,
	)
}
