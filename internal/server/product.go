package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
)

func (s *Server) ListProducts(c *gin.Context) {
	page, err := bindPagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	req := productdomain.ListRequest{
		Category:    strings.TrimSpace(c.Query("category")),
		SubCategory: strings.TrimSpace(c.Query("subcategory")),
		Type:        strings.TrimSpace(c.Query("type")),
		Brand:       strings.TrimSpace(c.Query("brand")),
		Status:      strings.TrimSpace(c.Query("status")),
		Search:      strings.TrimSpace(c.Query("search")),
		Ordering:    strings.TrimSpace(c.Query("ordering")),
		Page:        page,
	}
	if req.IsBestseller, err = parseOptionalBool(c, "is_bestseller"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.IsNew, err = parseOptionalBool(c, "is_new"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.IsFeatured, err = parseOptionalBool(c, "is_featured"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.MinPrice, err = parseOptionalDecimal(c, "min_price"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.MaxPrice, err = parseOptionalDecimal(c, "max_price"); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CuratedProducts(list productdomain.CuratedList) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := productdomain.CuratedRequest{
			SubCategory: strings.TrimSpace(c.Query("subcategory")),
		}
		if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
				return
			}
			req.Limit = limit
		}

		resp, err := s.productSvc.Curated(c.Request.Context(), list, req)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	}
}

func (s *Server) GetProductBySlug(c *gin.Context) {
	resp, err := s.productSvc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddProductImage accepts either a multipart upload (field "image") or a
// JSON body pointing at an already stored file.
func (s *Server) AddProductImage(c *gin.Context) {
	req, err := s.bindImageRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.AddImage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateProductImage(c *gin.Context) {
	var req productdomain.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.UpdateImage(c.Request.Context(), c.Param("id"), c.Param("imageId"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProductImage(c *gin.Context) {
	if err := s.productSvc.DeleteImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ReplaceProductSpecifications(c *gin.Context) {
	var req struct {
		Specifications []productdomain.SpecRequest `json:"specifications"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.ReplaceSpecifications(c.Request.Context(), c.Param("id"), req.Specifications)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ProductSpecificationsFromCharacteristics(c *gin.Context) {
	resp, err := s.productSvc.SpecificationsFromCharacteristics(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) bindImageRequest(c *gin.Context) (productdomain.ImageRequest, error) {
	var req productdomain.ImageRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, invalidRequestError()
		}
		return req, nil
	}

	header, err := c.FormFile("image")
	if err != nil {
		return req, newValidationError("image", "invalid_image", "image file is required")
	}
	url, err := s.storeUpload(header, "products")
	if err != nil {
		return req, err
	}
	req.Image = &url

	if alt := strings.TrimSpace(c.PostForm("alt_text")); alt != "" {
		req.AltText = &alt
	}
	if raw := strings.TrimSpace(c.PostForm("is_main")); raw != "" {
		isMain, err := strconv.ParseBool(raw)
		if err != nil {
			return req, newValidationError("is_main", "invalid_is_main", "must be true or false")
		}
		req.IsMain = &isMain
	}
	if raw := strings.TrimSpace(c.PostForm("order")); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			return req, newValidationError("order", "invalid_order", "must be an integer")
		}
		req.Order = &order
	}
	return req, nil
}
