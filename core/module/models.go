package module

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tracked-edu/tracked/core"
)

type Module struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	TeacherID   string    `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

func (m Module) ContentKind() ContentKind {
	return DetectContentKind(m.Content)
}

// NewModule contains information needed to create a new Module.
type NewModule struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Content     string `json:"content"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	return validate.Struct(nm)
}

// UpdateModule defines what information may be provided to modify an existing Module.
// Nil fields are left unchanged.
type UpdateModule struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Content     *string `json:"content"`
}

func (um *UpdateModule) Validate(validate *validator.Validate) error {
	um.Title = core.CleanStringPtr(um.Title)
	if um.Title != nil && *um.Title == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "title", Error: "this field cannot be blank"})
	}
	um.Description = core.CleanStringPtr(um.Description)
	return validate.Struct(um)
}

func (um UpdateModule) Changes() Changes {
	return Changes{Title: um.Title, Description: um.Description, Content: um.Content}
}

// Changes is the closed set of module fields a repository may update.
type Changes struct {
	Title       *string
	Description *string
	Content     *string
}

func (ch Changes) IsEmpty() bool {
	return ch.Title == nil && ch.Description == nil && ch.Content == nil
}

type QueryFilter struct {
	TeacherID string `query:"teacher_id"`
	// Search does a case-insensitive substring match on Module.Title.
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TeacherID = core.CleanString(qf.TeacherID)
}
