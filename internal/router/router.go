package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ZenGuideTeam/zg-account-server/internal/handlers"
)

func SetupPasswordResetRoutes(app *echo.Echo, resetHandler *handlers.PasswordResetHandler, limit echo.MiddlewareFunc) {
	api := app.Group("/api/auth/password-reset", limit)

	api.POST("/request", resetHandler.RequestReset) // Mail a one-time code
	api.POST("/verify", resetHandler.VerifyOTP)     // Exchange the code for a verified ticket
	api.POST("/reset", resetHandler.ResetPassword)  // Commit the new password with the ticket
}

func SetupUserRoutes(app *echo.Echo, userHandler *handlers.UserHandler, limit echo.MiddlewareFunc, auth echo.MiddlewareFunc) {
	api := app.Group("/api/users")

	api.GET("/email-exists", userHandler.CheckEmailExists, limit) // Check if email is already in the DB
	api.POST("/sign-up", userHandler.SignUp, limit)
	api.POST("/login", userHandler.Login, limit)
	api.GET("/me", userHandler.Me, auth)
	api.PUT("/me", userHandler.UpdateProfile, auth)
	api.POST("/me/password", userHandler.ChangePassword, auth)
}

func SetupSettingsRoutes(app *echo.Echo, settingsHandler *handlers.SettingsHandler, auth echo.MiddlewareFunc) {
	api := app.Group("/api/users/me/settings", auth)

	api.GET("", settingsHandler.GetSettings)
	api.PATCH("", settingsHandler.SaveSettings) // Partial update, unset fields are kept
}

func SetupTourRoutes(app *echo.Echo, tourHandler *handlers.TourHandler, auth echo.MiddlewareFunc) {
	api := app.Group("/api/tours", auth)

	api.GET("", tourHandler.List)
	api.POST("", tourHandler.Create)
	api.GET("/:id", tourHandler.Get)
	api.PATCH("/:id", tourHandler.Update)
	api.DELETE("/:id", tourHandler.Delete)
	api.PUT("/:id/steps", tourHandler.SaveSteps)
	api.POST("/:id/events", tourHandler.TrackEvent)
	api.GET("/:id/analytics", tourHandler.Analytics)
	api.GET("/:id/funnel", tourHandler.Funnel)
}

// SetupPublicTourRoutes exposes active tours to the embeddable widget
func SetupPublicTourRoutes(app *echo.Echo, publicHandler *handlers.PublicTourHandler, limit echo.MiddlewareFunc) {
	api := app.Group("/api/public/tours", limit)

	api.GET("/:id", publicHandler.GetTour)
	api.POST("/:id/events", publicHandler.TrackEvent)
}
