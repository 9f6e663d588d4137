package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"taskboard/pkg/resources"
)

type Repository interface {
	ListTasks(ctx context.Context, direction SortDirection) ([]Task, error)
	GetTaskById(ctx context.Context, id string) (*Task, error)
	SaveTask(ctx context.Context, task *Task) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

const taskColumns = "id, title, description, start_time, end_time, priority, status, created_at, updated_at"

// The direction is picked from a fixed set, never formatted from user input.
var listQueries = map[SortDirection]string{
	SortAsc:  "SELECT " + taskColumns + " FROM tasks ORDER BY created_at ASC, id ASC",
	SortDesc: "SELECT " + taskColumns + " FROM tasks ORDER BY created_at DESC, id DESC",
}

type repository struct {
	tracer  trace.Tracer
	metrics *DBMetrics
	pool    resources.DBInstance
}

func NewRepository(pool resources.DBInstance) Repository {
	return &repository{
		tracer:  otel.GetTracerProvider().Tracer("taskboard/core"),
		metrics: NewDBMetrics(),
		pool:    pool,
	}
}

func (r *repository) ListTasks(ctx context.Context, direction SortDirection) ([]Task, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list_tasks", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListTasks",
		trace.WithAttributes(attribute.String("sort.direction", string(direction))))
	defer span.End()

	query, ok := listQueries[direction]
	if !ok {
		query = listQueries[SortAsc]
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)

	for rows.Next() {
		var t Task

		err = scanTask(rows, &t)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		tasks = append(tasks, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) GetTaskById(ctx context.Context, id string) (*Task, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "get_task_by_id", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.GetTaskById")
	defer span.End()

	var t Task

	err = scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE id = $1`,
		id,
	), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		return nil, fmt.Errorf("failed to get task by id: %w", err)
	}

	return &t, nil
}

func (r *repository) SaveTask(ctx context.Context, task *Task) (*Task, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "save_task", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.SaveTask")
	defer span.End()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var saved Task

	err = scanTask(tx.QueryRow(ctx,
		"INSERT INTO tasks (title, description, start_time, end_time) "+
			"VALUES ($1, $2, $3, $4) "+
			"RETURNING "+taskColumns,
		task.Title, task.Description, task.StartTime, task.EndTime), &saved)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &saved, nil
}

func (r *repository) UpdateTask(ctx context.Context, task *Task) (*Task, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "update_task", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.UpdateTask")
	defer span.End()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var updated Task

	err = scanTask(tx.QueryRow(ctx,
		"UPDATE tasks SET title = $2, description = $3, start_time = $4, end_time = $5, updated_at = NOW() "+
			"WHERE id = $1 "+
			"RETURNING "+taskColumns,
		task.Id, task.Title, task.Description, task.StartTime, task.EndTime), &updated)
	if err != nil {
		_ = tx.Rollback(ctx)

		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &updated, nil
}

func (r *repository) DeleteTask(ctx context.Context, id string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "delete_task", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.DeleteTask")
	defer span.End()

	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *repository) Ping(ctx context.Context) error {
	err := r.pool.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func scanTask(row pgx.Row, t *Task) error {
	return row.Scan(
		&t.Id,
		&t.Title,
		&t.Description,
		&t.StartTime,
		&t.EndTime,
		&t.Priority,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

/*

 */

type DBMetrics struct {
	qTotal   metric.Int64Counter
	qErrors  metric.Int64Counter
	qLatency metric.Float64Histogram
}

func NewDBMetrics() *DBMetrics {
	meter := otel.Meter("taskboard/db")

	qTotal, _ := meter.Int64Counter("db.query.total")
	qErrors, _ := meter.Int64Counter("db.query.errors.total")
	qLatency, _ := meter.Float64Histogram("db.query.duration.ms")

	return &DBMetrics{qTotal: qTotal, qErrors: qErrors, qLatency: qLatency}
}

func (m *DBMetrics) Observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgres"),
		attribute.String("db.operation", op),
	}

	m.qTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	ms := float64(time.Since(start).Milliseconds())
	m.qLatency.Record(ctx, ms, metric.WithAttributes(attrs...))

	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		m.qErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
