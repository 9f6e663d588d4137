package core

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Translator resolves a dotted message key with optional name/value interpolation pairs.
type Translator interface {
	T(key string, args ...string) string
}

//go:embed templates
var templatesFS embed.FS

// NewTemplates parses the embedded page templates with the view helpers bound to tr and loc.
func NewTemplates(tr Translator, loc *time.Location) (*template.Template, error) {
	funcs := template.FuncMap{
		"t": tr.T,
		"truncate": TruncateDescription,
		"formatTime": func(t time.Time) string {
			return FormatTime(t, loc)
		},
		"errorMessages": func(verr *ValidationError) []string {
			return verr.Messages(tr)
		},
		"fieldErrors": func(verr *ValidationError, field string) []string {
			fields := verr.For(field)

			msgs := make([]string, 0, len(fields))
			for _, f := range fields {
				msgs = append(msgs, FullMessage(tr, f))
			}

			return msgs
		},
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl", "templates/*/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// NewRouter builds the gin engine serving the task pages and wraps it with the form method override.
func NewRouter(handlers Handlers, tmpl *template.Template, middlewares ...gin.HandlerFunc) http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares...)
	engine.SetHTMLTemplate(tmpl)

	RegisterRoutes(engine, handlers)

	return MethodOverride(engine)
}

func RegisterRoutes(engine *gin.Engine, handlers Handlers) {
	engine.GET("/", handlers.Root)
	engine.GET("/health", handlers.Health)

	tasks := engine.Group("/tasks")
	tasks.GET("", handlers.Index)
	tasks.GET("/new", handlers.New)
	tasks.POST("", handlers.Create)
	tasks.GET("/:id", handlers.Show)
	tasks.GET("/:id/edit", handlers.Edit)
	tasks.PATCH("/:id", handlers.Update)
	tasks.PUT("/:id", handlers.Update)
	tasks.DELETE("/:id", handlers.Destroy)

	engine.NoRoute(handlers.NotFound)
}
