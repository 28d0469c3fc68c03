package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	deliverydomain "github.com/smallbiznis/vitrine/internal/delivery/domain"
)

func (s *Server) ListDeliveries(c *gin.Context) {
	page, err := bindPagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.deliverySvc.List(c.Request.Context(), deliverydomain.ListRequest{
		Status:  strings.TrimSpace(c.Query("status")),
		Carrier: strings.TrimSpace(c.Query("carrier")),
		Search:  strings.TrimSpace(c.Query("search")),
		Page:    page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateDelivery(c *gin.Context) {
	var req deliverydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deliverySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) TrackDelivery(c *gin.Context) {
	resp, err := s.deliverySvc.Track(c.Request.Context(), c.Param("tracking"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDelivery(c *gin.Context) {
	resp, err := s.deliverySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDelivery(c *gin.Context) {
	var req deliverydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deliverySvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDelivery(c *gin.Context) {
	if err := s.deliverySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) UpdateDeliveryStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deliverySvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDeliveryHistory(c *gin.Context) {
	resp, err := s.deliverySvc.ListHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddDeliveryHistory(c *gin.Context) {
	var req deliverydomain.HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if principal, ok := principalFromContext(c); ok {
		req.CreatedBy = principal.User.Username
	}

	resp, err := s.deliverySvc.AddHistory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) DeliverySlip(c *gin.Context) {
	body, filename, err := s.deliverySvc.Slip(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.DataFromReader(http.StatusOK, -1, "application/pdf", body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", filename),
	})
}
