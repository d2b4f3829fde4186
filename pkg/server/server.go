package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Dhanunjay2704/autostruct/pkg/binder"
	"github.com/Dhanunjay2704/autostruct/pkg/config"
	"github.com/Dhanunjay2704/autostruct/pkg/errcodes"
	"github.com/Dhanunjay2704/autostruct/pkg/filesystem"
	"github.com/Dhanunjay2704/autostruct/pkg/structures"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
)

func New(cfg *config.Config) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Structure parse/preview/create routes.
	structures.RegisterRoutes(e, cfg)

	// Filesystem routes for the base directory picker.
	filesystem.RegisterRoutes(e, cfg)

	// Config routes so clients can mirror server limits.
	config.RegisterRoutes(e, cfg)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
