package servers

import (
	"net/http"

	"github.com/qmdx00/lifecycle"
)

var (
	_ Server = (*httpServer)(nil)
	_ Server = (*baseServer)(nil)
)

type Server interface {
	lifecycle.Server
}

//

var (
	_ Application = (*lifecycle.App)(nil)
)

type Application interface {
	ID() string
	Name() string
	Version() string
	Metadata() map[string]string
	Attach(name string, server lifecycle.Server)
	Run() error
}

// NewApplication hosts the attached servers until SIGINT/SIGTERM, stopping them in attach order.
func NewApplication(name string, version string) Application {
	return lifecycle.NewApp(
		lifecycle.WithName(name),
		lifecycle.WithVersion(version),
	)
}

//

var (
	_ BuildHttpServerFn = BuildHttpServer
)

type BuildHttpServerFn func(name string, server *http.Server) (string, Server)
