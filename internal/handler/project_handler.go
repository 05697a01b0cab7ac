package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/fms/internal/model"
	"github.com/blues/fms/internal/store"
	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目接口
type ProjectHandler struct {
	store *store.Store
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(s *store.Store) *ProjectHandler {
	return &ProjectHandler{store: s}
}

// CreateProjectRequest 创建项目请求体
type CreateProjectRequest struct {
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description"`
	OwnerEns         string `json:"ownerEns" binding:"required"`
	OwnerAddress     string `json:"ownerAddress" binding:"required"`
	TokenReward      int64  `json:"tokenReward" binding:"min=0"`
	RequiredSkills   string `json:"requiredSkills"`
	CompletionSkills string `json:"completionSkills"`
	ChainProjectID   *int64 `json:"chainProjectId"`
}

// CreateProject 创建项目
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project := model.Project{
		Title:            req.Title,
		Description:      req.Description,
		OwnerEns:         req.OwnerEns,
		OwnerAddress:     req.OwnerAddress,
		TokenReward:      req.TokenReward,
		RequiredSkills:   req.RequiredSkills,
		CompletionSkills: req.CompletionSkills,
		ChainProjectID:   req.ChainProjectID,
		Status:           model.ProjectStatusOpen,
	}

	if err := h.store.CreateProject(&project); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "项目创建成功", project)
}

// GetProjects 获取项目列表
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	status := c.Query("status")

	projects, err := h.store.ListProjects(status)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"projects": projects})
}

// GetProject 获取项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	project, err := h.store.GetProject(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if project == nil {
		ErrorResponse(c, http.StatusNotFound, "项目不存在")
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"project": project})
}
