package handler

import (
	"net/http"

	"github.com/blues/mes/internal/logic"
	"github.com/gin-gonic/gin"
)

// PaymentHandler 到账通知入口。链上模式由事件监控调用同一逻辑，
// 本地模式由外部代币服务直接回调此接口。
type PaymentHandler struct {
	projectLogic *logic.ProjectLogic
}

func NewPaymentHandler(projectLogic *logic.ProjectLogic) *PaymentHandler {
	return &PaymentHandler{projectLogic: projectLogic}
}

// NotifyPayment 处理到账通知，按付款人身份分派为质押或购买
func (h *PaymentHandler) NotifyPayment(c *gin.Context) {
	var req struct {
		Payer  string `json:"payer" binding:"required"`
		Amount int64  `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.projectLogic.HandlePayment(c.Param("id"), req.Payer, req.Amount); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "支付已入账", h.projectLogic.GetProject(c.Param("id")))
}
