package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/mes/internal/logic"
	"github.com/gin-gonic/gin"
)

type RefundHandler struct {
	projectLogic *logic.ProjectLogic
}

func NewRefundHandler(projectLogic *logic.ProjectLogic) *RefundHandler {
	return &RefundHandler{projectLogic: projectLogic}
}

// Refund 买家退款。阈值达成前全额退还，之后按已完成比例分账
func (h *RefundHandler) Refund(c *gin.Context) {
	var req struct {
		Buyer string `json:"buyer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.projectLogic.Refund(c.Param("id"), req.Buyer); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "退款成功", nil)
}

// GetRefundRecords 获取项目退款流水
func (h *RefundHandler) GetRefundRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.projectLogic.GetRefundRecords(c.Param("id"), page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records":   records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
