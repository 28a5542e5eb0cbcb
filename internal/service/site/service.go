package site

import (
	"context"
	"fmt"
	"math"

	"github.com/cmlabs-hris/guardops-backend/internal/domain/audit"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/auth"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/site"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

type siteServiceImpl struct {
	tx    database.Transactor
	repo  site.SiteRepository
	audit audit.Recorder
}

func NewSiteService(tx database.Transactor, repo site.SiteRepository, recorder audit.Recorder) site.SiteService {
	return &siteServiceImpl{tx: tx, repo: repo, audit: recorder}
}

// Create implements site.SiteService.
func (s *siteServiceImpl) Create(ctx context.Context, req site.CreateSiteRequest) (site.SiteResponse, error) {
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return site.SiteResponse{}, err
	}

	var created site.Site
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, site.Site{
			TenantID:   session.TenantID,
			Name:       req.Name,
			Code:       req.Code,
			Address:    req.Address,
			ClientName: req.ClientName,
			IsActive:   true,
		})
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.ActionSiteCreated, audit.EntitySite, created.ID, map[string]any{
			"name": created.Name,
			"code": created.Code,
		})
	})
	if err != nil {
		return site.SiteResponse{}, err
	}
	return site.NewSiteResponse(created), nil
}

// GetByID implements site.SiteService.
func (s *siteServiceImpl) GetByID(ctx context.Context, id string) (site.SiteResponse, error) {
	if !validator.IsValidUUID(id) {
		return site.SiteResponse{}, validator.ValidationErrors{{Field: "id", Message: "id must be a valid UUID"}}
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return site.SiteResponse{}, err
	}

	data, err := s.repo.GetByID(ctx, id, session.TenantID)
	if err != nil {
		return site.SiteResponse{}, err
	}
	return site.NewSiteResponse(data), nil
}

// List implements site.SiteService.
func (s *siteServiceImpl) List(ctx context.Context, filter site.SiteFilter) (site.ListSiteResponse, error) {
	if err := filter.Validate(); err != nil {
		return site.ListSiteResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return site.ListSiteResponse{}, err
	}

	sites, total, err := s.repo.List(ctx, session.TenantID, filter)
	if err != nil {
		return site.ListSiteResponse{}, fmt.Errorf("failed to list sites: %w", err)
	}

	resp := site.ListSiteResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Sites:      make([]site.SiteResponse, 0, len(sites)),
	}
	for _, st := range sites {
		resp.Sites = append(resp.Sites, site.NewSiteResponse(st))
	}
	return resp, nil
}

// Update implements site.SiteService.
func (s *siteServiceImpl) Update(ctx context.Context, req site.UpdateSiteRequest) (site.SiteResponse, error) {
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return site.SiteResponse{}, err
	}

	var updated site.Site
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		updated, err = s.repo.Update(txCtx, req, session.TenantID)
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.ActionSiteUpdated, audit.EntitySite, updated.ID, req)
	})
	if err != nil {
		return site.SiteResponse{}, err
	}
	return site.NewSiteResponse(updated), nil
}

// Delete deactivates the site. Slots and templates stay in place.
func (s *siteServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return validator.ValidationErrors{{Field: "id", Message: "id must be a valid UUID"}}
	}

	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Deactivate(txCtx, id, session.TenantID); err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.ActionSiteDeactivated, audit.EntitySite, id, nil)
	})
}
