package site

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

type CreateSiteRequest struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Code       string  `json:"code" validate:"required,max=50"`
	Address    *string `json:"address" validate:"omitempty,max=500"`
	ClientName *string `json:"client_name" validate:"omitempty,max=255"`
}

func (r *CreateSiteRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	return validator.Struct(r)
}

type UpdateSiteRequest struct {
	ID         string  `json:"-"`
	Name       *string `json:"name" validate:"omitempty,min=1,max=255"`
	Code       *string `json:"code" validate:"omitempty,min=1,max=50"`
	Address    *string `json:"address" validate:"omitempty,max=500"`
	ClientName *string `json:"client_name" validate:"omitempty,max=255"`
	IsActive   *bool   `json:"is_active"`
}

func (r *UpdateSiteRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*r.Code))
		r.Code = &code
	}
	if err := validator.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, verrs...)
		} else {
			return err
		}
	}
	if r.Name == nil && r.Code == nil && r.Address == nil && r.ClientName == nil && r.IsActive == nil {
		errs.Add("body", "at least one field must be provided")
	}
	return errs.OrNil()
}

type SiteFilter struct {
	Search   *string
	IsActive *bool
	Page     int
	Limit    int
}

func (f *SiteFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	return errs.OrNil()
}

type SiteResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Code       string  `json:"code"`
	Address    *string `json:"address,omitempty"`
	ClientName *string `json:"client_name,omitempty"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func NewSiteResponse(s Site) SiteResponse {
	return SiteResponse{
		ID:         s.ID,
		Name:       s.Name,
		Code:       s.Code,
		Address:    s.Address,
		ClientName: s.ClientName,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.Format(time.RFC3339),
	}
}

type ListSiteResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Sites      []SiteResponse `json:"sites"`
}
