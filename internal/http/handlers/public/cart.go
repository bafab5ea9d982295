package public

import (
	"github.com/fuguang-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartRequest 加入购物车请求
type AddCartRequest struct {
	CourseID uint  `json:"course_id" binding:"required"`
	Selected *bool `json:"selected"`
}

// CartSelectionRequest 修改单个课程勾选状态请求
type CartSelectionRequest struct {
	CourseID uint  `json:"course_id" binding:"required"`
	Selected *bool `json:"selected" binding:"required"`
}

// CartSelectAllRequest 全选/全不选请求
type CartSelectAllRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

// AddToCart 加入购物车
func (h *Handler) AddToCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	selected := true
	if req.Selected != nil {
		selected = *req.Selected
	}

	result, err := h.CartService.Add(c.Request.Context(), uid, req.CourseID, selected)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, result)
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	courses, err := h.CartService.List(c.Request.Context(), uid)
	if err != nil {
		respondCartError(c, err, "error.cart_fetch_failed")
		return
	}
	response.Success(c, gin.H{"course_list": courses})
}

// GetSelectedCart 结算页勾选课程
func (h *Handler) GetSelectedCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	courses, err := h.CartService.SelectedCourses(c.Request.Context(), uid)
	if err != nil {
		respondCartError(c, err, "error.cart_fetch_failed")
		return
	}
	response.Success(c, gin.H{"course_list": courses})
}

// SetCartSelection 修改单个课程勾选状态
func (h *Handler) SetCartSelection(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.SetSelection(c.Request.Context(), uid, req.CourseID, *req.Selected); err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// SetAllCartSelections 全选或全不选
func (h *Handler) SetAllCartSelections(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartSelectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	updated, err := h.CartService.SetAllSelections(c.Request.Context(), uid, *req.Selected)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"updated": updated})
}

// RemoveCartItem 从购物车移除课程
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseUintParam(c, "course_id", "error.course_id_invalid")
	if !ok {
		return
	}
	if err := h.CartService.Remove(c.Request.Context(), uid, courseID); err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"removed": true})
}
