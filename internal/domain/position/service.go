package position

import "context"

type PositionService interface {
	Create(ctx context.Context, req CreatePositionRequest) (PositionResponse, error)
	GetByID(ctx context.Context, siteID, id string) (PositionResponse, error)
	List(ctx context.Context, siteID string, includeInactive bool) ([]PositionResponse, error)
	Update(ctx context.Context, req UpdatePositionRequest) (PositionResponse, error)
	Delete(ctx context.Context, siteID, id string) error
}
