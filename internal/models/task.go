package models

import "time"

type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// NewTask is a create candidate. ID is optional; zero-valued tasks get a
// generated id.
type NewTask struct {
	ID    *int64 `json:"id,omitempty"`
	Title string `json:"title"`
}

// TaskPatch carries the mutable fields of a task. Nil fields are left as is.
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Apply merges the present patch fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
