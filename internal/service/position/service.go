package position

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/position"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

type positionServiceImpl struct {
	tx        database.Transactor
	sites     site.SiteRepository
	positions position.PositionRepository
	audit     audit.Recorder
}

func NewPositionService(tx database.Transactor, sites site.SiteRepository, positions position.PositionRepository, recorder audit.Recorder) position.PositionService {
	return &positionServiceImpl{tx: tx, sites: sites, positions: positions, audit: recorder}
}

// Create implements position.PositionService.
func (s *positionServiceImpl) Create(ctx context.Context, req position.CreatePositionRequest) (position.PositionResponse, error) {
	if err := req.Validate(); err != nil {
		return position.PositionResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return position.PositionResponse{}, err
	}

	siteData, err := s.sites.GetByID(ctx, req.SiteID, session.TenantID)
	if err != nil {
		return position.PositionResponse{}, err
	}
	if !siteData.IsActive {
		return position.PositionResponse{}, site.ErrSiteInactive
	}

	var created position.PositionTemplate
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		created, err = s.positions.Create(txCtx, position.PositionTemplate{
			TenantID:          session.TenantID,
			SiteID:            siteData.ID,
			Name:              req.Name,
			ShiftCode:         req.ShiftCode,
			WeekdayMask:       req.Mask,
			RequiredHeadcount: req.RequiredHeadcount,
			ActiveFrom:        req.From,
			ActiveUntil:       req.Until,
			IsActive:          true,
		})
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.ActionPositionCreated, audit.EntityPosition, created.ID, position.NewPositionResponse(created))
	})
	if err != nil {
		return position.PositionResponse{}, err
	}
	return position.NewPositionResponse(created), nil
}

// GetByID implements position.PositionService.
func (s *positionServiceImpl) GetByID(ctx context.Context, siteID, id string) (position.PositionResponse, error) {
	if err := validateIDs(siteID, id); err != nil {
		return position.PositionResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return position.PositionResponse{}, err
	}

	tpl, err := s.positions.GetByID(ctx, id, siteID, session.TenantID)
	if err != nil {
		return position.PositionResponse{}, err
	}
	return position.NewPositionResponse(tpl), nil
}

// List implements position.PositionService.
func (s *positionServiceImpl) List(ctx context.Context, siteID string, includeInactive bool) ([]position.PositionResponse, error) {
	if !validator.IsValidUUID(siteID) {
		return nil, validator.ValidationErrors{{Field: "site_id", Message: "site_id must be a valid UUID"}}
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.sites.GetByID(ctx, siteID, session.TenantID); err != nil {
		return nil, err
	}

	templates, err := s.positions.ListBySite(ctx, siteID, session.TenantID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list position templates: %w", err)
	}

	resp := make([]position.PositionResponse, 0, len(templates))
	for _, tpl := range templates {
		resp = append(resp, position.NewPositionResponse(tpl))
	}
	return resp, nil
}

// Update implements position.PositionService.
func (s *positionServiceImpl) Update(ctx context.Context, req position.UpdatePositionRequest) (position.PositionResponse, error) {
	if err := req.Validate(); err != nil {
		return position.PositionResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return position.PositionResponse{}, err
	}

	var updated position.PositionTemplate
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.positions.GetByID(txCtx, req.ID, req.SiteID, session.TenantID)
		if err != nil {
			return err
		}

		patched, err := req.Apply(current)
		if err != nil {
			return err
		}

		updated, err = s.positions.Update(txCtx, patched)
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.ActionPositionUpdated, audit.EntityPosition, updated.ID, map[string]any{
			"before": position.NewPositionResponse(current),
			"after":  position.NewPositionResponse(updated),
		})
	})
	if err != nil {
		return position.PositionResponse{}, err
	}
	return position.NewPositionResponse(updated), nil
}

// Delete deactivates the template; slots already generated from it are kept.
func (s *positionServiceImpl) Delete(ctx context.Context, siteID, id string) error {
	if err := validateIDs(siteID, id); err != nil {
		return err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.positions.Deactivate(txCtx, id, siteID, session.TenantID); err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.ActionPositionDeactivated, audit.EntityPosition, id, map[string]any{"site_id": siteID})
	})
}

func validateIDs(siteID, id string) error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(siteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	if !validator.IsValidUUID(id) {
		errs.Add("id", "id must be a valid UUID")
	}
	return errs.OrNil()
}
