package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/conduit-dev/conduit/internal/auth"
	"github.com/conduit-dev/conduit/internal/models"
)

// Conduit clients send "Token <jwt>"; "Bearer <jwt>" is accepted too
var authSchemes = []string{"Token ", "Bearer "}

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUserNotFound      = errors.New("user not found")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	for _, scheme := range authSchemes {
		if strings.HasPrefix(authHeader, scheme) {
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, scheme))
			if token == "" {
				return "", ErrEmptyToken
			}
			return token, nil
		}
	}

	return "", ErrInvalidAuthFormat
}

func respondUnauthorized(c *gin.Context, log zerolog.Logger, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": gin.H{"token": []string{message}}})
}

// TokenAuthMiddleware validates the JWT and loads the user it belongs to
func TokenAuthMiddleware(db *gorm.DB, tokens *auth.TokenIssuer, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c.GetHeader("Authorization"))
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "is missing"
			case ErrInvalidAuthFormat:
				message = "has an unsupported scheme"
			case ErrEmptyToken:
				message = "is empty"
			}
			respondUnauthorized(c, log, err, message)
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			respondUnauthorized(c, log, errors.Join(ErrInvalidToken, err), "is invalid or expired")
			return
		}

		var user models.User
		if err := models.FindByID(db, claims.UserID, &user); err != nil {
			log.Error().Err(err).Str("user_id", claims.UserID).Msg("User not found")
			respondUnauthorized(c, log, ErrUserNotFound, "does not belong to a user")
			return
		}

		setSession(c, &auth.SessionData{
			UserID:   user.ID,
			Username: user.Username,
			Token:    token,
		})

		c.Next()
	}
}
