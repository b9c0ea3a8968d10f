package main

import (
	"context"
	"log"
	"os"

	"compass/cmd/fx/account_fx"
	"compass/cmd/fx/chat_fx"
	"compass/cmd/fx/converter_fx"
	"compass/cmd/fx/db_fx"
	"compass/cmd/fx/discovery_fx"
	"compass/cmd/fx/gateway_fx"
	"compass/cmd/fx/memcache_fx"
	"compass/cmd/fx/session_fx"
	"compass/internal/api/controllers"
	"compass/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	app := fx.New(
		db_fx.Module,
		gateway_fx.Module,
		memcache_fx.Module,
		account_fx.Module,
		session_fx.Module,
		chat_fx.Module,
		converter_fx.Module,
		discovery_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	sessionController *controllers.SessionController,
	chatController *controllers.ChatController,
	convertController *controllers.ConvertController,
	discoveryController *controllers.DiscoveryController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, accountController, sessionController, chatController, convertController, discoveryController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	sessionController *controllers.SessionController,
	chatController *controllers.ChatController,
	convertController *controllers.ConvertController,
	discoveryController *controllers.DiscoveryController) {

	accounts := r.Group("/accounts")
	accounts.POST("/register", accountController.Register)
	accounts.POST("/login", accountController.Login)
	accounts.GET("/me", middleware.JWTAuthMiddleware(), accountController.Me)

	sessions := r.Group("/sessions", middleware.JWTAuthMiddleware())
	sessions.POST("", sessionController.CreateSession)
	sessions.GET("", sessionController.ListSessions)
	sessions.GET("/:id", sessionController.GetSession)
	sessions.DELETE("/:id", sessionController.DeleteSession)
	sessions.POST("/:id/publish", sessionController.PublishItinerary)
	sessions.POST("/:id/chat", chatController.SendMessage)
	sessions.POST("/:id/items/:itemId/confirm", chatController.ConfirmItem)
	sessions.DELETE("/:id/items/:itemId", chatController.RemoveItem)

	itineraries := r.Group("/itineraries", middleware.JWTAuthMiddleware())
	itineraries.POST("/convert", convertController.Convert)

	community := r.Group("/community")
	community.GET("/itineraries", discoveryController.ListPublic)
	community.GET("/itineraries/similar", discoveryController.FindSimilar)
	community.GET("/itineraries/:id", discoveryController.GetItinerary)
}
