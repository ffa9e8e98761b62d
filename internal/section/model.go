// internal/section/model.go
//
// `website_section` row model and request payloads.
//
// Context
// -------
// A section is a named, keyed, ordered block of editable content that
// belongs to exactly one website.  Content is an arbitrary JSON object
// stored in a MySQL JSON column.  (website_id, key) is unique; sort_order
// decides display sequence and may have gaps.
package section

import (
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx/types"

	"github.com/yanizio/sitedesk/internal/slug"
)

// Section mirrors one row in `website_section`.
type Section struct {
	ID        uint64         `db:"id"         json:"id"`
	WebsiteID uint64         `db:"website_id" json:"website"`
	Name      string         `db:"name"       json:"name"`
	Key       string         `db:"key"        json:"key"`
	Content   types.JSONText `db:"content"    json:"content"`
	Order     int            `db:"sort_order" json:"order"`
}

// CreateInput is the POST payload.  An empty key is derived from name.
type CreateInput struct {
	Name    string          `json:"name"    validate:"required,max=100"`
	Key     string          `json:"key"     validate:"max=100"`
	Content json.RawMessage `json:"content" validate:"omitempty,jsonobject"`
	Order   int             `json:"order"`
}

// UpdateInput is the PATCH payload.  Nil fields are left unchanged.
type UpdateInput struct {
	Name    *string          `json:"name"    validate:"omitnil,min=1,max=100"`
	Key     *string          `json:"key"     validate:"omitnil,min=1,max=100"`
	Content *json.RawMessage `json:"content" validate:"omitnil,jsonobject"`
	Order   *int             `json:"order"`
}

var emptyObject = types.JSONText(`{}`)

func (in *CreateInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Key = strings.TrimSpace(in.Key)
	if in.Key == "" && in.Name != "" {
		in.Key = slug.Make(in.Name)
	}
}

func (in CreateInput) content() types.JSONText {
	if len(in.Content) == 0 {
		return emptyObject
	}
	return types.JSONText(in.Content)
}

// Replacement turns a full PUT body into an update that sets every field.
func (in CreateInput) Replacement() UpdateInput {
	in.normalize()
	raw := json.RawMessage(in.content())
	return UpdateInput{
		Name:    &in.Name,
		Key:     &in.Key,
		Content: &raw,
		Order:   &in.Order,
	}
}

func (in *UpdateInput) normalize() {
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		in.Name = &n
	}
	if in.Key != nil {
		k := strings.TrimSpace(*in.Key)
		in.Key = &k
	}
}

func (in UpdateInput) apply(s *Section) {
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Key != nil {
		s.Key = *in.Key
	}
	if in.Content != nil {
		s.Content = types.JSONText(*in.Content)
	}
	if in.Order != nil {
		s.Order = *in.Order
	}
}
