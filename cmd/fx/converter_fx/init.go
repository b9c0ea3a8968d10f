package converter_fx

import (
	"compass/internal/api/controllers"
	"compass/internal/services"
	"compass/pkg/utils"

	"go.uber.org/fx"
)

var Module = fx.Provide(
	providePromptBuilder,
	provideValidator,
	provideConversionService,
	provideConvertController)

func providePromptBuilder() *services.PromptBuilder {
	return services.NewPromptBuilder()
}

func provideValidator() *services.ItineraryValidator {
	return services.NewItineraryValidator()
}

func provideConversionService(llm utils.LLMClientInterface, prompts *services.PromptBuilder, validator *services.ItineraryValidator) services.ConversionServiceInterface {
	return services.NewConversionService(llm, prompts, validator)
}

func provideConvertController(conversionService services.ConversionServiceInterface) *controllers.ConvertController {
	return controllers.NewConvertController(conversionService)
}
