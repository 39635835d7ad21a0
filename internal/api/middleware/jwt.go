package middleware

import (
	"errors"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Role        string         `json:"role"`         // usually "authenticated" / "anon"
	AppMetadata map[string]any `json:"app_metadata"` // {"role":"admin"} grants admin routes
}

type JWTConfig struct {
	Secret   string
	Issuer   string // optional
	Audience string // optional
}

func JWTConfigFromEnv() JWTConfig {
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	return JWTConfig{
		Secret:   secret,
		Issuer:   os.Getenv("SUPABASE_JWT_ISSUER"),
		Audience: os.Getenv("SUPABASE_JWT_AUDIENCE"),
	}
}

var (
	errMissingToken = errors.New("missing bearer token")
	errBadToken     = errors.New("invalid token")
)

// Identity is what the rest of the service knows about the caller.
type Identity struct {
	UserID string
	Role   models.UserRole
}

func (cfg JWTConfig) parse(raw string) (Identity, error) {
	claims := &supabaseClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || tok == nil || !tok.Valid {
		return Identity{}, errBadToken
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return Identity{}, errors.New("invalid token issuer")
	}
	if cfg.Audience != "" && !slices.Contains([]string(claims.Audience), cfg.Audience) {
		return Identity{}, errors.New("invalid token audience")
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("missing subject")
	}

	id := Identity{UserID: claims.Subject, Role: models.RoleUser}
	if s, ok := claims.AppMetadata["role"].(string); ok && s != "" {
		id.Role = models.UserRole(s)
	}
	return id, nil
}

func bearer(c *gin.Context) (string, error) {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		if raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); raw != "" {
			return raw, nil
		}
	}
	// browsers cannot set headers on a websocket handshake
	if websocketUpgrade(c.Request) {
		if raw := c.Query("access_token"); raw != "" {
			return raw, nil
		}
	}
	return "", errMissingToken
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// JWTAuth verifies the HS256 token and stores user_id and role in the context.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "SUPABASE_JWT_SECRET is not set",
			})
			return
		}

		raw, err := bearer(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Code: utils.CodeUnauthorized, Message: err.Error()})
			return
		}

		id, err := cfg.parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Code: utils.CodeUnauthorized, Message: err.Error()})
			return
		}

		c.Set("user_id", id.UserID)
		c.Set("role", string(id.Role))
		c.Next()
	}
}
