package handler

import (
	"errors"
	"net/http"

	"github.com/blues/fms/internal/logger"
	"github.com/blues/fms/internal/logic"
	"github.com/gin-gonic/gin"
)

// ApprovalHandler 人工审批入口
type ApprovalHandler struct {
	settlement *logic.SettlementLogic
}

// NewApprovalHandler 创建人工审批处理器
func NewApprovalHandler(settlement *logic.SettlementLogic) *ApprovalHandler {
	return &ApprovalHandler{settlement: settlement}
}

// ApprovalRequest 人工审批请求体
type ApprovalRequest struct {
	ProjectID               int64  `json:"projectId" binding:"required"`
	FreelancerWalletEns     string `json:"freelancerWalletEns" binding:"required"`
	FreelancerWalletAddress string `json:"freelancerWalletAddress" binding:"required"`
	CompanyWalletEns        string `json:"companyWalletEns" binding:"required"`
	CompanyWalletAddress    string `json:"companyWalletAddress"`
}

// ApprovalResponse 人工审批应答
type ApprovalResponse struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
}

// ApproveWork 发布方人工审批，触发与webhook路径相同的发放逻辑
func (h *ApprovalHandler) ApproveWork(c *gin.Context) {
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ApprovalResponse{
			IsSuccess: false,
			Message:   "invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.settlement.ApproveWork(c.Request.Context(), logic.ApprovalRequest{
		ProjectID:         req.ProjectID,
		FreelancerEns:     req.FreelancerWalletEns,
		FreelancerAddress: req.FreelancerWalletAddress,
		CompanyEns:        req.CompanyWalletEns,
		CompanyAddress:    req.CompanyWalletAddress,
	})
	if err != nil {
		h.respondError(c, req.ProjectID, err)
		return
	}

	c.JSON(http.StatusOK, ApprovalResponse{
		IsSuccess: result.IsSuccess,
		Message:   result.Message,
	})
}

// respondError 按错误类别映射状态码，应答始终保持 {isSuccess, message} 形状
func (h *ApprovalHandler) respondError(c *gin.Context, projectID int64, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, logic.ErrNotAuthorized):
		status = http.StatusForbidden
		message = "only the project owner can approve work"
	case errors.Is(err, logic.ErrProjectNotFound):
		status = http.StatusNotFound
		message = "project not found"
	case errors.Is(err, logic.ErrProjectClosed):
		status = http.StatusConflict
		message = "project is already closed"
	case errors.Is(err, logic.ErrRewardTransfer):
		message = "reward transfer failed"
	}

	logger.Error("Manual approval failed for project %d: %v", projectID, err)
	c.JSON(status, ApprovalResponse{IsSuccess: false, Message: message})
}
