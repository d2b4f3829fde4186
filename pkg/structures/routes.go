package structures

import (
	"github.com/Dhanunjay2704/autostruct/pkg/config"
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg *config.Config) {
	structureService := NewService(cfg)

	h := &handler{
		structureService: structureService,
	}

	structureGroup := e.Group("/structures")
	structureGroup.POST("/parse", h.parse)
	structureGroup.POST("/preview", h.preview)
	structureGroup.POST("/create", h.create)
}
