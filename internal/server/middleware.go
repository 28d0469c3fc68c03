package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/vitrine/internal/auth/domain"
	"github.com/smallbiznis/vitrine/internal/authorization"
	obscontext "github.com/smallbiznis/vitrine/internal/observability/context"
)

const contextPrincipalKey = "auth_principal"

// SessionRequired resolves the session cookie and stores the principal on
// the request. Requests without a live session stop with 401.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextPrincipalKey, principal)
		ctx := obscontext.WithActor(c.Request.Context(), "user", principal.User.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := authorization.Actor{
			UserID: principal.User.ID,
			Role:   string(principal.User.Role),
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func principalFromContext(c *gin.Context) (*authdomain.Principal, bool) {
	value, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*authdomain.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}
