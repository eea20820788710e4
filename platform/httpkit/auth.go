package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const accessTokenType = "access"

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// accessClaims is the payload the auth service signs for staff sessions.
type accessClaims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Type  string   `json:"type"`
	Roles []string `json:"roles,omitempty"`
}

// AuthRequired accepts only HMAC-signed access tokens with a subject.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	keyFunc := func(*jwt.Token) (any, error) { return []byte(cfg.GetJWTAccessSecret()), nil }

	return func(c *gin.Context) {
		staff, err := authenticate(parser, keyFunc, c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			return
		}
		SetStaff(c, staff)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.ActorKey, staff.Login))
		c.Next()
	}
}

func authenticate(parser *jwt.Parser, keyFunc jwt.Keyfunc, header string) (Staff, error) {
	raw, found := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !found || raw == "" {
		return Staff{}, errMissingToken
	}

	var claims accessClaims
	if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
		return Staff{}, errInvalidToken
	}
	login := strings.TrimSpace(claims.Subject)
	if claims.Type != accessTokenType || login == "" {
		return Staff{}, errInvalidToken
	}
	return Staff{Login: login, Name: strings.TrimSpace(claims.Name), Roles: claims.Roles}, nil
}

// RequireRole must run after AuthRequired.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if staff, _ := CurrentStaff(c); !staff.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		c.Next()
	}
}
