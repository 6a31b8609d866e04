package notes

import (
	"github.com/debemdeboas/the-notes/internal/model"
)

type Mode int

const (
	ModeIdle Mode = iota
	ModeViewing
	ModeEditing
	ModeCreating
)

func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeEditing:
		return "editing"
	case ModeCreating:
		return "creating"
	default:
		return "idle"
	}
}

// View is a copy of the controller state.
type View struct {
	Notes      []model.Note
	SelectedID model.NoteID
	Draft      model.Draft
	SearchText string
	Editing    bool
	Loading    bool
	LastError  string
	Err        error
	Mode       Mode
}

func (v View) Selected() (model.Note, bool) {
	if v.SelectedID.IsZero() {
		return model.Note{}, false
	}
	for _, n := range v.Notes {
		if n.ID == v.SelectedID {
			return n, true
		}
	}
	return model.Note{}, false
}

func (v View) Empty() bool {
	return len(v.Notes) == 0
}
