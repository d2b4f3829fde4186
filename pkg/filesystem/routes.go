package filesystem

import (
	"github.com/Dhanunjay2704/autostruct/pkg/config"
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg *config.Config) {
	filesystemService := NewService(cfg)

	h := &handler{
		filesystemService: filesystemService,
	}

	e.GET("/filesystem/browse", h.browse)
}
