package category

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CategoryRequest is the payload for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// CategoryHandler handles HTTP requests for category resources.
type CategoryHandler struct {
	service CategoryService
	logger  *zap.Logger
}

// NewCategoryHandler registers read endpoints on public and mutating ones
// on staff.
func NewCategoryHandler(public, staff *gin.RouterGroup, service CategoryService, logger *zap.Logger) *CategoryHandler {
	h := &CategoryHandler{service: service, logger: logger}
	public.GET("/categories", h.ListCategories)
	public.GET("/categories/:id", h.GetCategory)
	staff.POST("/categories", h.CreateCategory)
	staff.PUT("/categories/:id", h.RenameCategory)
	staff.DELETE("/categories/:id", h.DeleteCategory)
	return h
}

func (h *CategoryHandler) bindID(c *gin.Context) (uint, bool) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return 0, false
	}
	return uri.ID, true
}

// ListCategories godoc
// @Summary      List all categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}  Category
// @Router       /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.GetAllCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("ListCategories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory godoc
// @Summary      Get category by ID
// @Tags         categories
// @Produce      json
// @Param        id  path  int  true  "category id"
// @Success      200  {object}  Category
// @Failure      404  {object}  map[string]string
// @Router       /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	category, err := h.service.GetCategoryByID(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, category)
	case errors.Is(err, ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
	default:
		h.logger.Error("GetCategory failed", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read category"})
	}
}

// CreateCategory godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        payload  body  CategoryRequest  true  "category name"
// @Success      201  {object}  Category
// @Failure      409  {object}  map[string]string
// @Router       /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category name required"})
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), req.Name)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, category)
	case errors.Is(err, ErrCategoryNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "category name already exists"})
	case errors.Is(err, ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "category name required"})
	default:
		h.logger.Error("CreateCategory failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create category"})
	}
}

// RenameCategory godoc
// @Summary      Rename a category
// @Tags         categories
// @Accept       json
// @Param        id       path  int              true  "category id"
// @Param        payload  body  CategoryRequest  true  "new name"
// @Success      204  {object}  nil
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /categories/{id} [put]
func (h *CategoryHandler) RenameCategory(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category name required"})
		return
	}
	err := h.service.RenameCategory(c.Request.Context(), id, req.Name)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
	case errors.Is(err, ErrCategoryNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "category name already exists"})
	default:
		h.logger.Error("RenameCategory failed", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not rename category"})
	}
}

// DeleteCategory godoc
// @Summary      Delete a category
// @Tags         categories
// @Param        id  path  int  true  "category id"
// @Success      204  {object}  nil
// @Failure      404  {object}  map[string]string
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	err := h.service.DeleteCategory(c.Request.Context(), id)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
	default:
		h.logger.Error("DeleteCategory failed", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete category"})
	}
}
