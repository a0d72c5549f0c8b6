package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/contentslots/internal/adapters/http/dto"
	"github.com/jsamuelsen/contentslots/internal/platform/config"
	"github.com/jsamuelsen/contentslots/internal/platform/logging"
)

const (
	// ContextKeyClaims is the gin context key for storing extracted claims.
	ContextKeyClaims = "claims"

	defaultSubjectHeader = "X-User-ID"
	defaultScopesHeader  = "X-User-Scopes"
)

// Claims are the editor identity forwarded by the gateway, which has
// already validated the token.
type Claims struct {
	Subject string
	Scopes  []string
}

// HasScope checks if the editor was granted scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// HasAllScopes checks if the editor was granted every scope.
func (c *Claims) HasAllScopes(scopes ...string) bool {
	for _, scope := range scopes {
		if !c.HasScope(scope) {
			return false
		}
	}

	return true
}

// ExtractClaims reads the claims headers named in cfg. Scopes are
// space-separated as in OAuth2.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader, scopesHeader := defaultSubjectHeader, defaultScopesHeader

	if cfg != nil {
		if cfg.SubjectHeader != "" {
			subjectHeader = cfg.SubjectHeader
		}

		if cfg.ScopesHeader != "" {
			scopesHeader = cfg.ScopesHeader
		}
	}

	return &Claims{
		Subject: strings.TrimSpace(c.GetHeader(subjectHeader)),
		Scopes:  strings.Fields(c.GetHeader(scopesHeader)),
	}
}

// GetClaims returns the claims stored by RequireAuth, or nil.
func GetClaims(c *gin.Context) *Claims {
	if claims, ok := c.Get(ContextKeyClaims); ok {
		if cl, ok := claims.(*Claims); ok {
			return cl
		}
	}

	return nil
}

// RequireAuth rejects requests without a subject. Accepted requests get the
// subject on their context logger, so slot mutations are attributable.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)

		if claims.Subject == "" {
			abortWithForbidden(c, "authentication required")
			return
		}

		c.Set(ContextKeyClaims, claims)

		c.Request = c.Request.WithContext(logging.WithSubject(c.Request.Context(), claims.Subject))

		c.Next()
	}
}

// RequireScopes rejects requests missing any of scopes.
func RequireScopes(cfg *config.AuthConfig, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			claims = ExtractClaims(c, cfg)
			c.Set(ContextKeyClaims, claims)
		}

		if !claims.HasAllScopes(scopes...) {
			abortWithForbidden(c, "insufficient permissions: scopes ["+strings.Join(scopes, ", ")+"] required")
			return
		}

		c.Next()
	}
}

func abortWithForbidden(c *gin.Context, message string) {
	logging.FromContext(c.Request.Context()).WarnContext(c.Request.Context(), "write rejected",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("reason", message),
	)

	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponse(dto.ErrorCodeForbidden, message).WithTraceID(dto.GetTraceID(c)))
}
