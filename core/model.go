package core

import (
	"strings"
	"time"
)

type Task struct {
	Id          string    `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"       form:"title"       validate:"required"`
	Description string    `json:"description,omitempty" form:"description" validate:"required"`
	StartTime   time.Time `json:"start_time,omitempty"  form:"start_time"  validate:"required"`
	EndTime     time.Time `json:"end_time,omitempty"    form:"end_time"    validate:"required,gtefield=StartTime"`
	Priority    int       `json:"priority"`
	Status      int       `json:"status"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// SortDirection is the order applied to created_at when listing tasks.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection maps the created_at query parameter to a direction. Anything but "desc" is ascending.
func ParseSortDirection(value string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(value), string(SortDesc)) {
		return SortDesc
	}

	return SortAsc
}

// TaskForm carries the raw values submitted by the create and edit forms.
type TaskForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	StartTime   string `form:"start_time"`
	EndTime     string `form:"end_time"`
}

var formTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

const formTimeLayout = "2006-01-02T15:04"

// Apply copies the submitted values onto task. Unparseable timestamps become the zero time.
func (f TaskForm) Apply(task *Task, loc *time.Location) {
	task.Title = f.Title
	task.Description = f.Description
	task.StartTime = parseFormTime(f.StartTime, loc)
	task.EndTime = parseFormTime(f.EndTime, loc)
}

// NewTaskForm fills a form from a stored task, for the edit page.
func NewTaskForm(task *Task, loc *time.Location) TaskForm {
	if task == nil {
		return TaskForm{}
	}

	return TaskForm{
		Title:       task.Title,
		Description: task.Description,
		StartTime:   formatFormTime(task.StartTime, loc),
		EndTime:     formatFormTime(task.EndTime, loc),
	}
}

func parseFormTime(value string, loc *time.Location) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	if loc == nil {
		loc = time.Local
	}

	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t
	}

	for _, layout := range formTimeLayouts {
		t, err = time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t
		}
	}

	return time.Time{}
}

func formatFormTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}

	if loc != nil {
		t = t.In(loc)
	}

	return t.Format(formTimeLayout)
}
