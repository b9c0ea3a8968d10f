package chat_fx

import (
	"compass/internal/api/controllers"
	"compass/internal/repositories"
	"compass/internal/services"
	mem "compass/pkg/memcache"
	"compass/pkg/utils"

	"go.uber.org/fx"
)

var Module = fx.Provide(
	provideInterpreter,
	provideChatService,
	provideChatController)

func provideInterpreter(validator *services.ItineraryValidator) *services.ActionInterpreter {
	return services.NewActionInterpreter(validator)
}

func provideChatService(
	sessionRepo repositories.SessionRepository,
	llm utils.LLMClientInterface,
	prompts *services.PromptBuilder,
	interpreter *services.ActionInterpreter,
	locks *mem.SessionLocks,
) services.ChatServiceInterface {
	return services.NewChatService(sessionRepo, llm, prompts, interpreter, locks)
}

func provideChatController(chatService services.ChatServiceInterface) *controllers.ChatController {
	return controllers.NewChatController(chatService)
}
