package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recipegen/internal/types"
)

// Realm is the Basic auth realm announced in WWW-Authenticate
const Realm = "RecipeGen"

// ParseBasicPassword extracts the password from an "Authorization: Basic" header.
// The username part is ignored; the password is everything after the first colon.
func ParseBasicPassword(header string) (string, bool) {
	encoded, ok := strings.CutPrefix(header, "Basic ")
	if !ok {
		return "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", false
	}

	_, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", false
	}
	return pass, true
}

// PasswordMatches compares a supplied password with the configured secret.
// A secret that looks like a bcrypt hash is checked with bcrypt.
func PasswordMatches(secret, supplied string) bool {
	if secret == "" {
		return false
	}
	if isBcryptHash(secret) {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(supplied)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// BasicAuth rejects requests whose Basic auth password does not match secret.
// An empty secret rejects everything.
func BasicAuth(secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		pass, ok := ParseBasicPassword(c.GetHeader("Authorization"))
		if !ok || !PasswordMatches(secret, pass) {
			log.Info("basic auth rejected",
				zap.Bool("header_present", c.GetHeader("Authorization") != ""),
				zap.Bool("secret_configured", secret != ""),
				zap.String("request_id", GetRequestID(c)))
			Unauthorized(c)
			return
		}
		c.Next()
	}
}

// Unauthorized aborts with the Basic auth challenge
func Unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="`+Realm+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Unauthorized"})
}
