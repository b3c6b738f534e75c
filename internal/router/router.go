package router

import (
	"vibeapps/internal/handlers"
	"vibeapps/internal/middleware"
	"vibeapps/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps is everything the routes need.
type Deps struct {
	DB       *gorm.DB
	Engine   *services.Engine
	Feed     *services.ChangeFeed
	Limiter  *middleware.RateLimiter
	Gatherer prometheus.Gatherer
	Auth     *handlers.AuthHandler // nil disables the Google login routes
}

// RegisterRoutes expects sessions and middleware.LoadUser to be installed on r already.
func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	storyHandler := handlers.NewStoryHandler(d.Engine, d.Feed)
	voteHandler := handlers.NewVoteHandler(d.Engine)
	bookmarkHandler := handlers.NewBookmarkHandler(d.Engine)
	commentHandler := handlers.NewCommentHandler(d.Engine)
	reportHandler := handlers.NewReportHandler(d.Engine)
	tagHandler := handlers.NewTagHandler(d.Engine)
	moderationHandler := handlers.NewModerationHandler(d.Engine)
	notificationHandler := handlers.NewNotificationHandler(d.DB)
	authHandler := d.Auth
	if authHandler != nil {
		r.GET("/auth/google/login", authHandler.Login)       // 发起 Google 登录
		r.GET("/auth/google/callback", authHandler.Callback) // Google 回调
	} else {
		authHandler = handlers.NewAuthHandler(d.DB, nil, "")
	}

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.GET("/stories/:id", storyHandler.Detail)          // 互动数据投影
	api.GET("/stories/:id/related", storyHandler.Related) // 相关推荐
	api.GET("/stories/:id/events", storyHandler.Events)   // 实时变更 (SSE)
	api.GET("/stories/:id/comments", commentHandler.List) // 已审核评论
	api.GET("/tags/header", tagHandler.Header)            // 导航标签
	api.POST("/auth/logout", authHandler.Logout)          // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)                                // 当前用户
		authorized.GET("/stories/:id/me", voteHandler.State)                 // 当前用户的互动状态
		authorized.GET("/me/bookmarks", bookmarkHandler.List)                // 我的收藏
		authorized.PUT("/stories/:id/tags", storyHandler.UpdateTags)         // 编辑标签
		authorized.POST("/tags/resolve", tagHandler.Resolve)                 // 解析标签
		authorized.GET("/notifications", notificationHandler.List)           // 我的通知列表
		authorized.POST("/notifications/:id/read", notificationHandler.Read) // 标记单条通知为已读
	}

	// 写操作限流 (Rate-limited mutations)
	limited := authorized.Group("")
	if d.Limiter != nil {
		limited.Use(d.Limiter.Middleware())
	}
	{
		limited.POST("/stories/:id/vote", voteHandler.Vote)           // 点赞/取消点赞
		limited.POST("/stories/:id/rating", voteHandler.Rate)         // 评分
		limited.POST("/stories/:id/bookmark", bookmarkHandler.Toggle) // 收藏/取消收藏
		limited.POST("/stories/:id/comments", commentHandler.Create)  // 发表评论
		limited.POST("/stories/:id/reports", reportHandler.Create)    // 举报
	}

	// 审核路由 (Moderation Routes)
	mod := api.Group("/mod")
	mod.Use(middleware.ModeratorRequired())
	{
		mod.GET("/comments", moderationHandler.PendingComments)      // 待审核评论
		mod.POST("/comments/:id", moderationHandler.ModerateComment) // 审核评论
		mod.GET("/reports", moderationHandler.Reports)               // 举报列表
		mod.POST("/reports/:id", moderationHandler.ResolveReport)    // 处理举报
	}
}
