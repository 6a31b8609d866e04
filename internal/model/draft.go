package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Field names a draft field that the editor can change.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
)

var ErrUnknownField = errors.New("unknown draft field")

func ParseField(name string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(name))); f {
	case FieldTitle, FieldContent:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// Draft is the editor buffer. It is either an unsaved note (empty ID) or a
// copy of a persisted note.
type Draft struct {
	ID        NoteID
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func DraftFrom(n Note) Draft {
	return Draft{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (d *Draft) IsNew() bool {
	return d.ID.IsZero()
}

func (d *Draft) Set(field Field, value string) error {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldContent:
		d.Content = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Input validates the draft and returns the fields that are written to the
// store.
func (d *Draft) Input() (NoteInput, error) {
	in := NoteInput{Title: d.Title, Content: d.Content}
	return in, in.Validate()
}

// NoteInput holds the user-writable columns of a note.
type NoteInput struct {
	Title   string `json:"title" validate:"required,max=100"`
	Content string `json:"content" validate:"max=3200"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (in NoteInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: FieldTitle, Message: MsgTitleRequired}
	}

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return err
		}
		fe := fieldErrs[0]
		field := Field(strings.ToLower(fe.Field()))
		switch fe.Tag() {
		case "max":
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf(MsgTooLongFmt, titleCase(field), fe.Param()),
			}
		case "required":
			return &ValidationError{Field: field, Message: MsgTitleRequired}
		default:
			return &ValidationError{Field: field, Message: fe.Error()}
		}
	}
	return nil
}

func titleCase(f Field) string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
