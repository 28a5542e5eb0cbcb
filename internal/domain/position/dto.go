package position

import (
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/pkg/validator"
)

type CreatePositionRequest struct {
	SiteID            string   `json:"-"`
	Name              string   `json:"name" validate:"required,max=255"`
	ShiftCode         *string  `json:"shift_code" validate:"omitempty,max=20"`
	WeekdayMask       []string `json:"weekday_mask" validate:"required,min=1,max=7"`
	RequiredHeadcount int      `json:"required_headcount" validate:"gte=1,lte=500"`
	ActiveFrom        *string  `json:"active_from"`
	ActiveUntil       *string  `json:"active_until"`

	Mask  WeekdayMask `json:"-"`
	From  *time.Time  `json:"-"`
	Until *time.Time  `json:"-"`
}

func (r *CreatePositionRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.ShiftCode != nil && *r.ShiftCode == "" {
		r.ShiftCode = nil
	}
	if !validator.IsValidUUID(r.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	if err := validator.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}

	if len(r.WeekdayMask) > 0 {
		mask, err := ParseWeekdayMask(r.WeekdayMask)
		if err != nil {
			errs.Add("weekday_mask", err.Error())
		}
		r.Mask = mask
	}

	r.From, r.Until = parseWindow(&errs, r.ActiveFrom, r.ActiveUntil)
	return errs.OrNil()
}

// UpdatePositionRequest patches a template. An empty active_from or active_until clears that bound.
type UpdatePositionRequest struct {
	ID                string    `json:"-"`
	SiteID            string    `json:"-"`
	Name              *string   `json:"name" validate:"omitempty,min=1,max=255"`
	ShiftCode         *string   `json:"shift_code" validate:"omitempty,max=20"`
	WeekdayMask       *[]string `json:"weekday_mask" validate:"omitempty,min=1,max=7"`
	RequiredHeadcount *int      `json:"required_headcount" validate:"omitempty,gte=1,lte=500"`
	ActiveFrom        *string   `json:"active_from"`
	ActiveUntil       *string   `json:"active_until"`
	IsActive          *bool     `json:"is_active"`

	Mask WeekdayMask `json:"-"`
}

func (r *UpdatePositionRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if !validator.IsValidUUID(r.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	if err := validator.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}
	if r.WeekdayMask != nil {
		if len(*r.WeekdayMask) == 0 {
			errs.Add("weekday_mask", "weekday_mask must contain at least one weekday")
		} else if mask, err := ParseWeekdayMask(*r.WeekdayMask); err != nil {
			errs.Add("weekday_mask", err.Error())
		} else {
			r.Mask = mask
		}
	}
	for field, v := range map[string]*string{"active_from": r.ActiveFrom, "active_until": r.ActiveUntil} {
		if v != nil && *v != "" {
			if _, ok := validator.IsValidDate(*v); !ok {
				errs.Add(field, "invalid date format, use YYYY-MM-DD")
			}
		}
	}
	return errs.OrNil()
}

// Apply merges the patch into tpl and checks the resulting active window.
func (r *UpdatePositionRequest) Apply(tpl PositionTemplate) (PositionTemplate, error) {
	if r.Name != nil {
		tpl.Name = *r.Name
	}
	if r.ShiftCode != nil {
		if *r.ShiftCode == "" {
			tpl.ShiftCode = nil
		} else {
			code := *r.ShiftCode
			tpl.ShiftCode = &code
		}
	}
	if r.Mask != nil {
		tpl.WeekdayMask = r.Mask
	}
	if r.RequiredHeadcount != nil {
		tpl.RequiredHeadcount = *r.RequiredHeadcount
	}
	if r.ActiveFrom != nil {
		tpl.ActiveFrom = parseOptionalDate(*r.ActiveFrom)
	}
	if r.ActiveUntil != nil {
		tpl.ActiveUntil = parseOptionalDate(*r.ActiveUntil)
	}
	if r.IsActive != nil {
		tpl.IsActive = *r.IsActive
	}
	if tpl.ActiveFrom != nil && tpl.ActiveUntil != nil && !tpl.ActiveUntil.After(*tpl.ActiveFrom) {
		return tpl, validator.ValidationErrors{{Field: "active_until", Message: "active_until must be after active_from"}}
	}
	return tpl, nil
}

func parseWindow(errs *validator.ValidationErrors, from, until *string) (*time.Time, *time.Time) {
	var f, u *time.Time
	if from != nil && *from != "" {
		if d, ok := validator.IsValidDate(*from); ok {
			f = &d
		} else {
			errs.Add("active_from", "invalid date format, use YYYY-MM-DD")
		}
	}
	if until != nil && *until != "" {
		if d, ok := validator.IsValidDate(*until); ok {
			u = &d
		} else {
			errs.Add("active_until", "invalid date format, use YYYY-MM-DD")
		}
	}
	if f != nil && u != nil && !u.After(*f) {
		errs.Add("active_until", "active_until must be after active_from")
	}
	return f, u
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, ok := validator.IsValidDate(s)
	if !ok {
		return nil
	}
	return &d
}

type PositionResponse struct {
	ID                string   `json:"id"`
	SiteID            string   `json:"site_id"`
	Name              string   `json:"name"`
	ShiftCode         *string  `json:"shift_code,omitempty"`
	WeekdayMask       []string `json:"weekday_mask"`
	RequiredHeadcount int      `json:"required_headcount"`
	ActiveFrom        *string  `json:"active_from"`
	ActiveUntil       *string  `json:"active_until"`
	IsActive          bool     `json:"is_active"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

func NewPositionResponse(p PositionTemplate) PositionResponse {
	return PositionResponse{
		ID:                p.ID,
		SiteID:            p.SiteID,
		Name:              p.Name,
		ShiftCode:         p.ShiftCode,
		WeekdayMask:       p.WeekdayMask.Strings(),
		RequiredHeadcount: p.RequiredHeadcount,
		ActiveFrom:        formatDate(p.ActiveFrom),
		ActiveUntil:       formatDate(p.ActiveUntil),
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
