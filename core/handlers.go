package core

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers interface {
	Root(gctx *gin.Context)
	Health(gctx *gin.Context)
	Index(gctx *gin.Context)
	New(gctx *gin.Context)
	Create(gctx *gin.Context)
	Show(gctx *gin.Context)
	Edit(gctx *gin.Context)
	Update(gctx *gin.Context)
	Destroy(gctx *gin.Context)
	NotFound(gctx *gin.Context)
}

type handlers struct {
	repository Repository
	translator Translator
	location   *time.Location
}

func NewHandlers(repository Repository, translator Translator, location *time.Location) Handlers {
	if location == nil {
		location = time.Local
	}

	return &handlers{repository: repository, translator: translator, location: location}
}

const tasksPath = "/tasks"

func (h *handlers) Root(gctx *gin.Context) {
	gctx.Redirect(http.StatusSeeOther, tasksPath)
}

func (h *handlers) Health(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	err := h.repository.Ping(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("health check failed")
		gctx.String(http.StatusServiceUnavailable, "unavailable")

		return
	}

	gctx.String(http.StatusOK, "ok")
}

func (h *handlers) Index(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	// created_at is the only sort key; anything but desc lists oldest first
	current := gctx.Query("created_at")

	tasks, err := h.repository.ListTasks(ctx, ParseSortDirection(current))
	if err != nil {
		h.internalError(gctx, err, "listing tasks failed")
		return
	}

	gctx.HTML(http.StatusOK, "tasks/index", h.page(gctx, "tasks.index.title", gin.H{
		"Tasks":    tasks,
		"SortLink": NewSortLink(h.translator.T("attributes.task.created_at"), tasksPath, current),
	}))
}

func (h *handlers) New(gctx *gin.Context) {
	gctx.HTML(http.StatusOK, "tasks/new", h.newPage(gctx, TaskForm{}, nil))
}

func (h *handlers) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var form TaskForm

	err := gctx.ShouldBind(&form)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to bind task form")
	}

	var task Task
	form.Apply(&task, h.location)

	err = ValidateTask(task)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			h.internalError(gctx, err, "task validation failed")
			return
		}

		log.Ctx(ctx).Info().Err(err).Msg("task rejected")
		gctx.HTML(http.StatusUnprocessableEntity, "tasks/new", h.newPage(gctx, form, verr))

		return
	}

	saved, err := h.repository.SaveTask(ctx, &task)
	if err != nil {
		h.internalError(gctx, err, "saving task failed")
		return
	}

	log.Ctx(ctx).Info().Str("task_id", saved.Id).Msg("task created")
	setFlash(gctx, flashNotice, h.translator.T("tasks.create.notice"))
	gctx.Redirect(http.StatusSeeOther, tasksPath)
}

func (h *handlers) Show(gctx *gin.Context) {
	task, ok := h.findTask(gctx)
	if !ok {
		return
	}

	gctx.HTML(http.StatusOK, "tasks/show", h.page(gctx, "tasks.show.title", gin.H{"Task": task}))
}

func (h *handlers) Edit(gctx *gin.Context) {
	task, ok := h.findTask(gctx)
	if !ok {
		return
	}

	gctx.HTML(http.StatusOK, "tasks/edit", h.editPage(gctx, task, NewTaskForm(task, h.location), nil))
}

func (h *handlers) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	task, ok := h.findTask(gctx)
	if !ok {
		return
	}

	var form TaskForm

	err := gctx.ShouldBind(&form)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to bind task form")
	}

	candidate := *task
	form.Apply(&candidate, h.location)

	err = ValidateTask(candidate)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			h.internalError(gctx, err, "task validation failed")
			return
		}

		log.Ctx(ctx).Info().Err(err).Str("task_id", task.Id).Msg("task update rejected")
		gctx.HTML(http.StatusUnprocessableEntity, "tasks/edit", h.editPage(gctx, task, form, verr))

		return
	}

	_, err = h.repository.UpdateTask(ctx, &candidate)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			h.notFound(gctx)
			return
		}

		h.internalError(gctx, err, "updating task failed")

		return
	}

	log.Ctx(ctx).Info().Str("task_id", task.Id).Msg("task updated")
	setFlash(gctx, flashNotice, h.translator.T("tasks.update.notice"))
	gctx.Redirect(http.StatusSeeOther, tasksPath)
}

func (h *handlers) Destroy(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id := gctx.Param("id")

	err := ErrTaskNotFound
	if validId(id) {
		err = h.repository.DeleteTask(ctx, id)
	}

	if err != nil {
		if !errors.Is(err, ErrTaskNotFound) {
			h.internalError(gctx, err, "deleting task failed")
			return
		}

		log.Ctx(ctx).Info().Str("task_id", id).Msg("task to delete not found")
		setFlash(gctx, flashAlert, h.translator.T("tasks.destroy.alert"))
		gctx.Redirect(http.StatusSeeOther, h.referer(gctx))

		return
	}

	log.Ctx(ctx).Info().Str("task_id", id).Msg("task deleted")
	setFlash(gctx, flashNotice, h.translator.T("tasks.destroy.notice"))
	gctx.Redirect(http.StatusSeeOther, tasksPath)
}

func (h *handlers) NotFound(gctx *gin.Context) {
	h.notFound(gctx)
}

// findTask loads the task named by the id parameter, rendering the error page itself when it cannot.
func (h *handlers) findTask(gctx *gin.Context) (*Task, bool) {
	ctx := gctx.Request.Context()

	id := gctx.Param("id")
	if !validId(id) {
		log.Ctx(ctx).Info().Str("task_id", id).Msg("malformed task id")
		h.notFound(gctx)

		return nil, false
	}

	task, err := h.repository.GetTaskById(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			log.Ctx(ctx).Info().Str("task_id", id).Msg("task not found")
			h.notFound(gctx)

			return nil, false
		}

		h.internalError(gctx, err, "loading task failed")

		return nil, false
	}

	return task, true
}

func (h *handlers) notFound(gctx *gin.Context) {
	gctx.HTML(http.StatusNotFound, "errors/not_found", h.page(gctx, "errors.not_found", nil))
}

func (h *handlers) internalError(gctx *gin.Context, err error, msg string) {
	log.Ctx(gctx.Request.Context()).Error().Err(err).Msg(msg)
	gctx.HTML(http.StatusInternalServerError, "errors/internal", h.page(gctx, "errors.internal", nil))
}

func (h *handlers) page(gctx *gin.Context, titleKey string, data gin.H) gin.H {
	page := gin.H{
		"Title": h.translator.T(titleKey),
		"Flash": takeFlash(gctx),
	}

	for k, v := range data {
		page[k] = v
	}

	return page
}

func (h *handlers) newPage(gctx *gin.Context, form TaskForm, verr *ValidationError) gin.H {
	return h.page(gctx, "tasks.new.title", gin.H{
		"Form":   form,
		"Errors": verr,
		"Action": tasksPath,
		"Method": "",
		"Submit": h.translator.T("helpers.submit.create", "model", h.translator.T("models.task")),
	})
}

func (h *handlers) editPage(gctx *gin.Context, task *Task, form TaskForm, verr *ValidationError) gin.H {
	return h.page(gctx, "tasks.edit.title", gin.H{
		"Task":   task,
		"Form":   form,
		"Errors": verr,
		"Action": tasksPath + "/" + task.Id,
		"Method": "patch",
		"Submit": h.translator.T("helpers.submit.update", "model", h.translator.T("models.task")),
	})
}

// referer is the path of the Referer header when it points at this host, else the listing.
func (h *handlers) referer(gctx *gin.Context) string {
	ref, err := url.Parse(gctx.Request.Referer())
	if err != nil || !strings.HasPrefix(ref.Path, "/") || (ref.Host != "" && ref.Host != gctx.Request.Host) {
		return tasksPath
	}

	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}

	return ref.Path
}

func validId(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
