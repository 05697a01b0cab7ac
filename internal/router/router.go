package router

import (
	"github.com/blues/fms/internal/config"
	"github.com/blues/fms/internal/handler"
	"github.com/blues/fms/internal/logic"
	"github.com/blues/fms/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, ledger logic.Ledger, cfg *config.Config) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "fms",
		})
	})

	s := store.New(db)
	settlement := logic.NewSettlementLogic(s, s, s, ledger)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// webhook结算入口
		webhookHandler := handler.NewWebhookHandler(settlement, cfg.Webhook)
		v1.POST("/webhooks/github", webhookHandler.HandleGithubEvent)

		// 人工审批入口
		approvalHandler := handler.NewApprovalHandler(settlement)
		v1.POST("/approvals", approvalHandler.ApproveWork)

		// 项目相关路由
		projectHandler := handler.NewProjectHandler(s)
		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/:id", projectHandler.GetProject)
		}

		// 提交相关路由
		submissionHandler := handler.NewSubmissionHandler(s)
		submissions := v1.Group("/submissions")
		{
			submissions.POST("", submissionHandler.CreateSubmission)
			submissions.GET("/unreconciled", submissionHandler.GetUnreconciled)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-GitHub-Event, X-Hub-Signature-256")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
