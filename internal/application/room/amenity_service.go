package room

import (
	"context"

	"github.com/google/uuid"
	"github.com/roombook/backend/internal/domain/room"
	"github.com/roombook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrAmenityNameTaken is returned when another amenity already uses the name
var ErrAmenityNameTaken = shared.NewDomainError("ALREADY_EXISTS", "Amenity with this name already exists")

// AmenityService handles amenity catalog operations
type AmenityService struct {
	amenities room.AmenityRepository
	cache     RoomCache
	logger    *zap.Logger
}

// NewAmenityService creates a new AmenityService. Room responses embed
// amenities, so every write invalidates cache.
func NewAmenityService(amenities room.AmenityRepository, cache RoomCache, logger *zap.Logger) *AmenityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmenityService{amenities: amenities, cache: cache, logger: logger}
}

// Create creates a new amenity
func (s *AmenityService) Create(ctx context.Context, req CreateAmenityRequest) (*AmenityResponse, error) {
	exists, err := s.amenities.ExistsByName(ctx, req.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAmenityNameTaken
	}

	amenity, err := room.NewAmenity(req.Name, req.Icon, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.amenities.Save(ctx, amenity); err != nil {
		return nil, err
	}

	resp := toAmenityResponse(amenity)
	return &resp, nil
}

// Get returns one amenity
func (s *AmenityService) Get(ctx context.Context, id uuid.UUID) (*AmenityResponse, error) {
	amenity, err := s.amenities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAmenityResponse(amenity)
	return &resp, nil
}

// List returns amenities ordered by name
func (s *AmenityService) List(ctx context.Context, f AmenityListFilter) ([]AmenityResponse, int64, error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.PageSize = 100
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = f.Search

	amenities, total, err := s.amenities.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AmenityResponse, len(amenities))
	for i := range amenities {
		out[i] = toAmenityResponse(&amenities[i])
	}
	return out, total, nil
}

// Update renames or redescribes an amenity
func (s *AmenityService) Update(ctx context.Context, id uuid.UUID, req UpdateAmenityRequest) (*AmenityResponse, error) {
	amenity, err := s.amenities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.amenities.ExistsByName(ctx, req.Name, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAmenityNameTaken
	}

	if err := amenity.Update(req.Name, req.Icon, req.Description); err != nil {
		return nil, err
	}
	if err := s.amenities.Save(ctx, amenity); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	resp := toAmenityResponse(amenity)
	return &resp, nil
}

// Delete removes an amenity from the catalog and from every room offering it
func (s *AmenityService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.amenities.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.amenities.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("Amenity deleted", zap.String("amenity_id", id.String()))
	return nil
}

func (s *AmenityService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate room cache", zap.Error(err))
	}
}
