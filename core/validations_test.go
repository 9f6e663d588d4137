package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTask(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name       string
		task       Task
		wantFields []FieldError
	}{
		{
			name: "valid task",
			task: Task{
				Title:       "Valid Title",
				Description: "Valid description",
				StartTime:   now.Add(-24 * time.Hour),
				EndTime:     now,
			},
		},
		{
			name: "long title",
			task: Task{
				Title:       strings.Repeat("t", 300),
				Description: "Valid description",
				StartTime:   now,
				EndTime:     now.Add(time.Hour),
			},
		},
		{
			name: "end time equal to start time",
			task: Task{
				Title:       "Valid Title",
				Description: "Valid description",
				StartTime:   now,
				EndTime:     now,
			},
		},
		{
			name: "blank title",
			task: Task{
				Title:       "   ",
				Description: "Valid description",
				StartTime:   now,
				EndTime:     now.Add(time.Hour),
			},
			wantFields: []FieldError{{Field: "title", Code: CodeBlank}},
		},
		{
			name: "blank description",
			task: Task{
				Title:     "Valid Title",
				StartTime: now,
				EndTime:   now.Add(time.Hour),
			},
			wantFields: []FieldError{{Field: "description", Code: CodeBlank}},
		},
		{
			name: "missing start time skips ordering",
			task: Task{
				Title:       "Valid Title",
				Description: "Valid description",
				EndTime:     now,
			},
			wantFields: []FieldError{{Field: "start_time", Code: CodeBlank}},
		},
		{
			name: "missing end time skips ordering",
			task: Task{
				Title:       "Valid Title",
				Description: "Valid description",
				StartTime:   now,
			},
			wantFields: []FieldError{{Field: "end_time", Code: CodeBlank}},
		},
		{
			name: "end time before start time",
			task: Task{
				Title:       "Valid Title",
				Description: "Valid description",
				StartTime:   now,
				EndTime:     now.Add(-24 * time.Hour),
			},
			wantFields: []FieldError{{Field: "end_time", Code: CodeBeforeStartTime}},
		},
		{
			name: "everything missing reports every field",
			task: Task{},
			wantFields: []FieldError{
				{Field: "title", Code: CodeBlank},
				{Field: "description", Code: CodeBlank},
				{Field: "start_time", Code: CodeBlank},
				{Field: "end_time", Code: CodeBlank},
			},
		},
		{
			name: "blank text and reversed times together",
			task: Task{
				StartTime: now,
				EndTime:   now.Add(-time.Minute),
			},
			wantFields: []FieldError{
				{Field: "title", Code: CodeBlank},
				{Field: "description", Code: CodeBlank},
				{Field: "end_time", Code: CodeBeforeStartTime},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateTask(tt.task)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrTaskInvalid)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantFields, verr.Fields)
		})
	}
}

func TestValidateTask_DoesNotTrimCaller(t *testing.T) {
	t.Parallel()

	now := time.Now()
	task := Task{Title: "  padded  ", Description: "d", StartTime: now, EndTime: now}

	require.NoError(t, ValidateTask(task))
	assert.Equal(t, "  padded  ", task.Title)
}
