package session_fx

import (
	"compass/internal/api/controllers"
	"compass/internal/repositories"
	"compass/internal/services"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Provide(
	provideSessionRepo,
	provideSessionService,
	provideSessionController)

func provideSessionRepo(db *gorm.DB) repositories.SessionRepository {
	return repositories.NewSessionRepository(db)
}

func provideSessionService(sessionRepo repositories.SessionRepository, discovery services.DiscoveryServiceInterface) services.SessionServiceInterface {
	return services.NewSessionService(sessionRepo, discovery)
}

func provideSessionController(sessionService services.SessionServiceInterface) *controllers.SessionController {
	return controllers.NewSessionController(sessionService)
}
