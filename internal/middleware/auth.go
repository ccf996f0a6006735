package middleware

import (
	"net/http"
	"strings"

	"github.com/ArapCheruiyot/superkeeper/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"
)

// ShopClaims are the custom claims embedded in every access token. The
// identity provider issues one token per shop owner; ShopID scopes every
// query and every recognizer call. A missing or invalid token is the
// unauthenticated landing state — nothing below /v1 is reachable without it.
type ShopClaims struct {
	ShopID   string `json:"shop_id"`
	ShopName string `json:"shop_name"`
	Operator string `json:"operator"` // display name recorded on ledger entries
	jwt.RegisteredClaims
}

// ShopAuth validates the Bearer token on every protected route.
func ShopAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &ShopClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.ShopID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalid or expired"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *ShopClaims {
	claims, _ := c.MustGet(ClaimsKey).(*ShopClaims)
	return claims
}
