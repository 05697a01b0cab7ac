package handler

import (
	"net/http"

	"github.com/blues/fms/internal/model"
	"github.com/blues/fms/internal/store"
	"github.com/gin-gonic/gin"
)

// SubmissionHandler 提交记录接口
type SubmissionHandler struct {
	store *store.Store
}

// NewSubmissionHandler 创建提交记录处理器
func NewSubmissionHandler(s *store.Store) *SubmissionHandler {
	return &SubmissionHandler{store: s}
}

// CreateSubmissionRequest 创建提交请求体
type CreateSubmissionRequest struct {
	ProjectID         int64  `json:"projectId" binding:"required"`
	FreelancerEns     string `json:"freelancerEns" binding:"required"`
	FreelancerAddress string `json:"freelancerAddress" binding:"required"`
	RepoOwner         string `json:"repoOwner" binding:"required"`
	RepoName          string `json:"repoName" binding:"required"`
	PrNumber          int    `json:"prNumber" binding:"required"`
	ChainSubmissionID *int64 `json:"chainSubmissionId"`
}

// CreateSubmission 接单方登记针对项目的工作提交
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.store.GetProject(req.ProjectID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if project == nil {
		ErrorResponse(c, http.StatusNotFound, "项目不存在")
		return
	}
	if project.Status != model.ProjectStatusOpen {
		ErrorResponse(c, http.StatusConflict, "项目已关闭")
		return
	}

	sub := model.Submission{
		ProjectID:         req.ProjectID,
		FreelancerEns:     req.FreelancerEns,
		FreelancerAddress: req.FreelancerAddress,
		RepoOwner:         req.RepoOwner,
		RepoName:          req.RepoName,
		PrNumber:          req.PrNumber,
		ChainSubmissionID: req.ChainSubmissionID,
		Status:            model.SubmissionStatusPending,
	}

	if err := h.store.CreateSubmission(&sub); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "提交创建成功", sub)
}

// GetUnreconciled 查询已发放但缺少链上回执的提交（对账用）
func (h *SubmissionHandler) GetUnreconciled(c *gin.Context) {
	subs, err := h.store.ListAwardedWithoutTxHash()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"submissions": subs,
		"total":       len(subs),
	})
}
