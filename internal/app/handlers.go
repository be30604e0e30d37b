package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lifepillar-backend/internal/handlers"
	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/server"
)

type Handlers struct {
	Assessment *handlers.AssessmentHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Assessment: handlers.NewAssessmentHandler(
			services.Writer,
			services.Reader,
			services.Pipeline,
			services.Migrator,
			services.Auditor,
		),
	}
}

func wireRouter(handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AssessmentHandler: handlerset.Assessment,
	})
}
