package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/vitrine/internal/auth/domain"
	"go.uber.org/zap"
)

type loginResponse struct {
	User      authdomain.UserResponse `json:"user"`
	ExpiresAt time.Time               `json:"expires_at"`
}

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ip := c.ClientIP()
	if res := s.loginLimiter.Allow(c.Request.Context(), req.Login, ip); !res.Allowed {
		s.obsMetrics.RecordLoginThrottled(c.Request.Context())
		if res.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
		}
		s.log.Warn("login throttled", zap.String("username", req.Login), zap.String("ip", ip))
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	req.UserAgent = c.Request.UserAgent()
	req.IPAddress = ip
	result, err := s.authsvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"data": loginResponse{
		User:      result.User,
		ExpiresAt: result.ExpiresAt,
	}})
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed", zap.Error(err))
		}
	}
	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": principal.User})
}
