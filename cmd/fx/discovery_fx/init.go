package discovery_fx

import (
	"compass/internal/api/controllers"
	"compass/internal/repositories"
	"compass/internal/services"
	"compass/pkg/utils"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Provide(
	provideDiscoveryRepo,
	provideDiscoveryService,
	provideDiscoveryController)

func provideDiscoveryRepo(db *gorm.DB) repositories.DiscoveryRepository {
	return repositories.NewDiscoveryRepository(db)
}

func provideDiscoveryService(discoveryRepo repositories.DiscoveryRepository, embedder utils.EmbeddingClientInterface) services.DiscoveryServiceInterface {
	return services.NewDiscoveryService(discoveryRepo, embedder)
}

func provideDiscoveryController(discoveryService services.DiscoveryServiceInterface) *controllers.DiscoveryController {
	return controllers.NewDiscoveryController(discoveryService)
}
