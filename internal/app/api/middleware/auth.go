package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/littlewanderers/frontdesk/pkg/logctx"
	"github.com/littlewanderers/frontdesk/pkg/response"
)

const HeaderStaffKey = "X-Staff-Key"

// PortalClaims are the fields read from the hosted auth provider's access
// token. Subject is the account id that owns households.
type PortalClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// PortalAuthMiddleware verifies an HS256 bearer token and stores the caller's
// account id and email under logctx.GinUserIDKey and logctx.GinEmailKey.
func PortalAuthMiddleware(secret string, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parsePortalToken(c.GetHeader("Authorization"), secret)
		if err != nil {
			logctx.FromGin(c, base).Infow("portal_auth_rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "unauthorized"))
			return
		}
		c.Set(logctx.GinUserIDKey, claims.Subject)
		c.Set(logctx.GinEmailKey, claims.Email)
		withUser(c, base, claims.Subject)
		c.Next()
	}
}

func parsePortalToken(header, secret string) (*PortalClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, fmt.Errorf("missing bearer token")
	}
	claims := &PortalClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// StaffAuthMiddleware admits front-desk devices whose X-Staff-Key matches the
// configured bcrypt hash. Browsers opening the websocket feed cannot set
// headers, so the key is also read from the "key" query parameter.
func StaffAuthMiddleware(keyHash string, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderStaffKey)
		if key == "" {
			key = c.Query("key")
		}
		if keyHash == "" || key == "" || bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
			logctx.FromGin(c, base).Infow("staff_auth_rejected", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "unauthorized"))
			return
		}
		c.Next()
	}
}
