// internal/website/model.go
//
// `website` table row model and request payloads.
//
// Context
// -------
// A website belongs to exactly one identity for its whole life.  No input
// type carries an owner field, so the owner cannot change after creation.
// Domains are globally unique and stored lower-case without a trailing dot.
package website

import (
	"strings"
	"time"
)

// Status is the lifecycle state.
type Status string

const (
	StatusDevelopment Status = "development"
	StatusLive        Status = "live"
	StatusMaintenance Status = "maintenance"
	StatusOffline     Status = "offline"
)

// Website mirrors one row in the `website` table.
type Website struct {
	ID          uint64    `db:"id"          json:"id"`
	OwnerID     uint64    `db:"owner_id"    json:"owner"`
	Name        string    `db:"name"        json:"name"`
	Domain      string    `db:"domain"      json:"domain"`
	Status      Status    `db:"status"      json:"status"`
	Description *string   `db:"description" json:"description"`
	IsActive    bool      `db:"is_active"   json:"is_active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// OwnerRef satisfies acl.Owned.
func (w *Website) OwnerRef() uint64 { return w.OwnerID }

// CreateInput is the POST /api/websites payload.  PUT reuses it so a full
// replacement must supply the same required fields.
type CreateInput struct {
	Name        string  `json:"name"        validate:"required,max=100"`
	Domain      string  `json:"domain"      validate:"required,max=255,fqdn"`
	Status      Status  `json:"status"      validate:"omitempty,oneof=development live maintenance offline"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateInput is the PATCH payload.  Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string `json:"name"        validate:"omitnil,min=1,max=100"`
	Domain      *string `json:"domain"      validate:"omitnil,max=255,fqdn"`
	Status      *Status `json:"status"      validate:"omitnil,oneof=development live maintenance offline"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (in *CreateInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Domain = NormalizeDomain(in.Domain)
	if in.Status == "" {
		in.Status = StatusDevelopment
	}
}

// Replacement turns a full PUT body into an update that sets every field.
// Omitted optional fields fall back to their create-time defaults.
func (in CreateInput) Replacement() UpdateInput {
	in.normalize()
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	desc := ""
	if in.Description != nil {
		desc = *in.Description
	}
	return UpdateInput{
		Name:        &in.Name,
		Domain:      &in.Domain,
		Status:      &in.Status,
		Description: &desc,
		IsActive:    &active,
	}
}

func (in *UpdateInput) normalize() {
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		in.Name = &n
	}
	if in.Domain != nil {
		d := NormalizeDomain(*in.Domain)
		in.Domain = &d
	}
}

// apply copies non-nil fields onto w.  An empty description clears it.
func (in UpdateInput) apply(w *Website) {
	if in.Name != nil {
		w.Name = *in.Name
	}
	if in.Domain != nil {
		w.Domain = *in.Domain
	}
	if in.Status != nil {
		w.Status = *in.Status
	}
	if in.Description != nil {
		if *in.Description == "" {
			w.Description = nil
		} else {
			d := *in.Description
			w.Description = &d
		}
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
}

// NormalizeDomain lower-cases d and strips surrounding space and a
// trailing dot.
func NormalizeDomain(d string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
}
