package handler

import (
	"net/http"

	"github.com/blues/fms/internal/config"
	"github.com/blues/fms/internal/logger"
	"github.com/blues/fms/internal/logic"
	"github.com/blues/fms/internal/webhook"
	"github.com/gin-gonic/gin"
)

// WebhookHandler webhook结算入口
type WebhookHandler struct {
	settlement *logic.SettlementLogic
	cfg        config.WebhookConfig
}

// NewWebhookHandler 创建webhook处理器
func NewWebhookHandler(settlement *logic.SettlementLogic, cfg config.WebhookConfig) *WebhookHandler {
	return &WebhookHandler{
		settlement: settlement,
		cfg:        cfg,
	}
}

// HandleGithubEvent 处理GitHub事件投递
// 流程：特性开关 -> 签名校验 -> 事件分类 -> 结算编排
// "不是合并事件"和"没有匹配的提交"都按成功应答，无关流量是正常现象
func (h *WebhookHandler) HandleGithubEvent(c *gin.Context) {
	if !h.cfg.Enabled {
		c.JSON(http.StatusOK, gin.H{"message": "webhook processing is disabled"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无法读取请求体")
		return
	}

	signature := c.GetHeader("X-Hub-Signature-256")
	if !webhook.VerifySignature(h.cfg.Secret, body, signature) {
		logger.Warn("Webhook signature verification failed")
		ErrorResponse(c, http.StatusUnauthorized, "签名校验失败")
		return
	}

	eventType := c.GetHeader("X-GitHub-Event")
	pr, ok := webhook.ClassifyMergeEvent(eventType, body)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "not a merge event"})
		return
	}

	result, err := h.settlement.ProcessMergedPullRequest(c.Request.Context(), logic.MergedPullRequest{
		RepoOwner: pr.RepoOwner,
		RepoName:  pr.RepoName,
		PrNumber:  pr.PrNumber,
	})
	if err != nil {
		logger.Error("Settlement failed for %s/%s#%d: %v", pr.RepoOwner, pr.RepoName, pr.PrNumber, err)
		ErrorResponse(c, http.StatusInternalServerError, "内部错误")
		return
	}

	c.JSON(http.StatusOK, h.buildWebhookResponse(result))
}

// buildWebhookResponse 组装webhook应答，发放相关的结果带上状态与链上信息
func (h *WebhookHandler) buildWebhookResponse(result *logic.SettleResult) gin.H {
	resp := gin.H{"message": result.Message}

	switch result.Outcome {
	case logic.SettleOutcomeNoMatch, logic.SettleOutcomeIgnored:
		return resp
	}

	resp["status"] = result.Status
	if result.TxHash != "" {
		resp["blockchainTxHash"] = result.TxHash
	} else {
		// 部分成功必须可见：已发放但没有链上回执时显式返回null
		resp["blockchainTxHash"] = nil
	}
	resp["tokensAwarded"] = result.TokensAwarded
	resp["blockchainSuccess"] = result.BlockchainSuccess
	return resp
}
