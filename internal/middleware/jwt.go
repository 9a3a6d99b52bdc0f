package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

// JWTAuth validates the Bearer access token and stores its *models.AccessClaims under "user".
func JWTAuth(tokens service.JWTGenerator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: "user",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims, err := tokens.ValidateToken(auth)
			if err != nil {
				return nil, err
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Debug().Err(err).Str("path", c.Path()).Msg("Access token rejected")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired access token")
		},
	})
}
