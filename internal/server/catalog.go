package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
)

// -------- Public --------

func (s *Server) ListPublicCategories(c *gin.Context) {
	s.listCategories(c, true)
}

func (s *Server) ListPublicSubCategories(c *gin.Context) {
	s.listSubCategories(c, true, false)
}

func (s *Server) ListHomepageSubCategories(c *gin.Context) {
	s.listSubCategories(c, true, true)
}

func (s *Server) ListPublicTypes(c *gin.Context) {
	s.listTypes(c, true)
}

func (s *Server) ListPublicBrands(c *gin.Context) {
	s.listBrands(c, true)
}

func (s *Server) ListPublicCollections(c *gin.Context) {
	s.listCollections(c, true)
}

// GetCategory serves both /api/categories/:slug/ and /admin/categories/:id.
// The public route never exposes an inactive category.
func (s *Server) GetCategory(c *gin.Context) {
	resp, err := s.taxonomySvc.GetCategory(c.Request.Context(), pathKey(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Param("slug") != "" && !resp.IsActive {
		AbortWithError(c, taxdomain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubCategory(c *gin.Context) {
	resp, err := s.taxonomySvc.GetSubCategory(c.Request.Context(), pathKey(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if c.Param("slug") != "" && !resp.IsActive {
		AbortWithError(c, taxdomain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// -------- Admin: categories --------

func (s *Server) ListCategories(c *gin.Context) {
	s.listCategories(c, false)
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req taxdomain.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCategory(c *gin.Context) {
	var req taxdomain.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCategory(c *gin.Context) {
	if err := s.taxonomySvc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -------- Admin: subcategories --------

func (s *Server) ListSubCategories(c *gin.Context) {
	s.listSubCategories(c, false, false)
}

func (s *Server) CreateSubCategory(c *gin.Context) {
	var req taxdomain.SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.CreateSubCategory(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateSubCategory(c *gin.Context) {
	var req taxdomain.SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.UpdateSubCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSubCategory(c *gin.Context) {
	if err := s.taxonomySvc.DeleteSubCategory(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -------- Admin: types --------

func (s *Server) ListTypes(c *gin.Context) {
	s.listTypes(c, false)
}

func (s *Server) CreateType(c *gin.Context) {
	var req taxdomain.TypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.CreateType(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateType(c *gin.Context) {
	var req taxdomain.TypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.UpdateType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteType(c *gin.Context) {
	if err := s.taxonomySvc.DeleteType(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -------- Admin: brands --------

func (s *Server) ListBrands(c *gin.Context) {
	s.listBrands(c, false)
}

func (s *Server) CreateBrand(c *gin.Context) {
	var req taxdomain.BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.CreateBrand(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateBrand(c *gin.Context) {
	var req taxdomain.BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.UpdateBrand(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBrand(c *gin.Context) {
	if err := s.taxonomySvc.DeleteBrand(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -------- Admin: collections --------

func (s *Server) ListCollections(c *gin.Context) {
	s.listCollections(c, false)
}

func (s *Server) CreateCollection(c *gin.Context) {
	var req taxdomain.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.CreateCollection(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCollection(c *gin.Context) {
	var req taxdomain.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxonomySvc.UpdateCollection(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCollection(c *gin.Context) {
	if err := s.taxonomySvc.DeleteCollection(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -------- Shared list handlers --------

func (s *Server) listCategories(c *gin.Context, public bool) {
	active, err := activeOnly(c, public)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.taxonomySvc.ListCategories(c.Request.Context(), taxdomain.CategoryListRequest{
		ActiveOnly: active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listSubCategories(c *gin.Context, public, homepage bool) {
	active, err := activeOnly(c, public)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.taxonomySvc.ListSubCategories(c.Request.Context(), taxdomain.SubCategoryListRequest{
		Category:     strings.TrimSpace(c.Query("category")),
		HomepageOnly: homepage,
		ActiveOnly:   active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listTypes(c *gin.Context, public bool) {
	active, err := activeOnly(c, public)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.taxonomySvc.ListTypes(c.Request.Context(), taxdomain.TypeListRequest{
		SubCategory: strings.TrimSpace(c.Query("subcategory")),
		ActiveOnly:  active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listBrands(c *gin.Context, public bool) {
	active, err := activeOnly(c, public)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.taxonomySvc.ListBrands(c.Request.Context(), active)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listCollections(c *gin.Context, public bool) {
	active, err := activeOnly(c, public)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.taxonomySvc.ListCollections(c.Request.Context(), active)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
