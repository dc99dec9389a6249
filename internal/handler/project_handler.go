package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/mes/internal/engine"
	"github.com/blues/mes/internal/logic"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectLogic *logic.ProjectLogic
}

func NewProjectHandler(projectLogic *logic.ProjectLogic) *ProjectHandler {
	return &ProjectHandler{projectLogic: projectLogic}
}

// DeclareProject 创建项目
func (h *ProjectHandler) DeclareProject(c *gin.Context) {
	var params engine.DeclareParams
	if err := c.ShouldBindJSON(&params); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.projectLogic.DeclareProject(params); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "项目创建成功", h.projectLogic.GetProject(params.Id))
}

// GetProjects 分页查询项目列表，可按创建者或买家过滤
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	creator := c.Query("creator")
	buyer := c.Query("buyer")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	projects, total, err := h.projectLogic.GetProjects(creator, buyer, page, size)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":  projects,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// GetProject 获取项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project := h.projectLogic.GetProject(c.Param("id"))
	if project == nil {
		ErrorResponse(c, http.StatusNotFound, "项目不存在")
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// CancelProject 取消项目，退还全部购买与质押后删除记录
func (h *ProjectHandler) CancelProject(c *gin.Context) {
	var req struct {
		Caller string `json:"caller" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.projectLogic.Cancel(c.Param("id"), req.Caller); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "项目已取消", nil)
}

// FinishMilestone 完成里程碑
func (h *ProjectHandler) FinishMilestone(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的里程碑下标")
		return
	}

	var req struct {
		Caller string `json:"caller" binding:"required"`
		Proof  string `json:"proof" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.projectLogic.FinishMilestone(c.Param("id"), req.Caller, index, req.Proof); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "里程碑已完成", h.projectLogic.GetProject(c.Param("id")))
}

// ForceFinish 强制结算
func (h *ProjectHandler) ForceFinish(c *gin.Context) {
	var req struct {
		Caller string `json:"caller" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.projectLogic.ForceFinish(c.Param("id"), req.Caller); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "项目已结算", h.projectLogic.GetProject(c.Param("id")))
}

// GetPurchase 查询某地址的购买量，不存在返回0
func (h *ProjectHandler) GetPurchase(c *gin.Context) {
	amount := h.projectLogic.GetPurchase(c.Param("id"), c.Param("address"))
	c.JSON(http.StatusOK, gin.H{
		"project_id": c.Param("id"),
		"address":    c.Param("address"),
		"amount":     amount,
	})
}

// GetPaymentRecords 获取项目支付流水
func (h *ProjectHandler) GetPaymentRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.projectLogic.GetPaymentRecords(c.Param("id"), page, pageSize)
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
