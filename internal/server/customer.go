package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
)

func (s *Server) ListCustomers(c *gin.Context) {
	page, err := bindPagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	req := customerdomain.ListCustomerRequest{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   page,
	}
	if req.CreatedFrom, err = parseOptionalTime(c, "created_from"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.CreatedTo, err = parseOptionalTime(c, "created_to"); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
