package model

// Taxonomy selects which process catalog a row belongs to. The two catalogs
// are structurally identical, so they share one table and differ only by
// this tag.
type Taxonomy string

const (
	TaxonomyPMBOK Taxonomy = "pmbok"
	TaxonomyScrum Taxonomy = "scrum"
)

func (t Taxonomy) Valid() bool {
	return t == TaxonomyPMBOK || t == TaxonomyScrum
}

// KanbanStatus tracks the workflow position of a process or a customization
// on the board. Transitions are free-form, any status may follow any other.
type KanbanStatus string

const (
	KanbanUnassigned KanbanStatus = "unassigned"
	KanbanBacklog    KanbanStatus = "backlog"
	KanbanTodo       KanbanStatus = "todo"
	KanbanInProgress KanbanStatus = "in_progress"
	KanbanInReview   KanbanStatus = "in_review"
	KanbanDone       KanbanStatus = "done"
)

func (s KanbanStatus) Valid() bool {
	switch s {
	case KanbanUnassigned, KanbanBacklog, KanbanTodo, KanbanInProgress, KanbanInReview, KanbanDone:
		return true
	default:
		return false
	}
}
