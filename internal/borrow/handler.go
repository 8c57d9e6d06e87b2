package borrow

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JakubMikolajczyk/Library/internal/user"
)

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// BorrowHandler handles HTTP requests for borrows and borrow history.
type BorrowHandler struct {
	service BorrowService
	logger  *zap.Logger
}

// NewBorrowHandler registers the caller-scoped endpoints on me and the
// per-user variants on staff.
func NewBorrowHandler(me, staff *gin.RouterGroup, service BorrowService, logger *zap.Logger) *BorrowHandler {
	h := &BorrowHandler{service: service, logger: logger}
	me.GET("/users/me/borrows", h.GetMyBorrows)
	me.GET("/users/me/borrow-histories", h.GetMyHistory)
	me.POST("/users/me/borrow-histories/:id/hide", h.HideMyHistory)
	me.POST("/users/me/borrow-histories/:id/unhide", h.UnhideMyHistory)
	staff.GET("/users/:id/borrows", h.GetUserBorrows)
	staff.GET("/users/:id/borrow-histories", h.GetUserHistory)
	return h
}

func (h *BorrowHandler) bindID(c *gin.Context) (uint, bool) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return 0, false
	}
	return uri.ID, true
}

// GetMyBorrows godoc
// @Summary      List the caller's active borrows
// @Tags         borrows
// @Produce      json
// @Success      200  {array}  Borrow
// @Router       /users/me/borrows [get]
func (h *BorrowHandler) GetMyBorrows(c *gin.Context) {
	principal, ok := user.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	borrows, err := h.service.GetBorrowsByUserID(c.Request.Context(), principal.ID)
	if err != nil {
		h.logger.Error("GetMyBorrows failed", zap.Uint("userID", principal.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list borrows"})
		return
	}
	c.JSON(http.StatusOK, borrows)
}

// GetMyHistory godoc
// @Summary      List the caller's borrow history
// @Tags         borrows
// @Produce      json
// @Param        showHidden  query  bool  false  "include hidden entries"
// @Success      200  {array}  History
// @Router       /users/me/borrow-histories [get]
func (h *BorrowHandler) GetMyHistory(c *gin.Context) {
	principal, ok := user.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	showHidden, _ := strconv.ParseBool(c.DefaultQuery("showHidden", "false"))
	entries, err := h.service.GetHistoryByUserID(c.Request.Context(), principal.ID, showHidden)
	if err != nil {
		h.logger.Error("GetMyHistory failed", zap.Uint("userID", principal.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list borrow history"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *BorrowHandler) setMyHistoryHidden(c *gin.Context, hidden bool) {
	principal, ok := user.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var err error
	if hidden {
		err = h.service.HideHistory(c.Request.Context(), id, principal.ID)
	} else {
		err = h.service.UnhideHistory(c.Request.Context(), id, principal.ID)
	}
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrHistoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
	default:
		h.logger.Error("history hide toggle failed", zap.Uint("historyID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update history entry"})
	}
}

// HideMyHistory godoc
// @Summary      Hide a borrow-history entry
// @Tags         borrows
// @Param        id  path  int  true  "history id"
// @Success      204  {object}  nil
// @Failure      404  {object}  map[string]string
// @Router       /users/me/borrow-histories/{id}/hide [post]
func (h *BorrowHandler) HideMyHistory(c *gin.Context) {
	h.setMyHistoryHidden(c, true)
}

// UnhideMyHistory godoc
// @Summary      Unhide a borrow-history entry
// @Tags         borrows
// @Param        id  path  int  true  "history id"
// @Success      204  {object}  nil
// @Failure      404  {object}  map[string]string
// @Router       /users/me/borrow-histories/{id}/unhide [post]
func (h *BorrowHandler) UnhideMyHistory(c *gin.Context) {
	h.setMyHistoryHidden(c, false)
}

// GetUserBorrows godoc
// @Summary      List any user's active borrows
// @Tags         borrows
// @Produce      json
// @Param        id  path  int  true  "user id"
// @Success      200  {array}  Borrow
// @Router       /users/{id}/borrows [get]
func (h *BorrowHandler) GetUserBorrows(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	borrows, err := h.service.GetBorrowsByUserID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("GetUserBorrows failed", zap.Uint("userID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list borrows"})
		return
	}
	c.JSON(http.StatusOK, borrows)
}

// GetUserHistory godoc
// @Summary      List any user's borrow history, hidden entries included
// @Tags         borrows
// @Produce      json
// @Param        id  path  int  true  "user id"
// @Success      200  {array}  History
// @Router       /users/{id}/borrow-histories [get]
func (h *BorrowHandler) GetUserHistory(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	entries, err := h.service.GetHistoryByUserID(c.Request.Context(), id, true)
	if err != nil {
		h.logger.Error("GetUserHistory failed", zap.Uint("userID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list borrow history"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
