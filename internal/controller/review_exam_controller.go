package controller

import (
	"context"
	"errors"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/review"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"
	"exam_prep_backend/pkg/logger"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ReviewExamService 控制器依赖的服务接口
type ReviewExamService interface {
	GenerateReviewTest(ctx context.Context, userID uint, cycle int) (*service.GenerateReviewResult, error)
	GetProgress(ctx context.Context, userID uint, cycle int) (*model.GenerationProgress, error)
	SubscribeProgress(ctx context.Context, userID uint, cycle int) (<-chan *model.GenerationProgress, error)
	GetSession(ctx context.Context, userID uint, id string) (*model.ExamSession, error)
	ListSessions(ctx context.Context, userID uint, cycle int) ([]model.ExamSessionSummary, error)
}

type ReviewExamController struct {
	Service ReviewExamService
}

func NewReviewExamController(svc ReviewExamService) *ReviewExamController {
	return &ReviewExamController{Service: svc}
}

// userAndCycle 解析当前用户和路径中的周期，失败时已写入响应
func userAndCycle(ctx *gin.Context) (*util.Claims, int, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, 0, false
	}
	cycle, err := util.ParsePositiveInt(ctx.Param("cycle"))
	if err != nil {
		util.BadRequest(ctx, util.ErrInvalidCycle.Error())
		return nil, 0, false
	}
	return user, cycle, true
}

// @Summary 生成复习卷
// @Description 根据本周期四套已完成考试的错题和高优先级题目，生成 180 题的第五套复习卷
// @Tags 复习卷
// @Produce json
// @Security ApiKeyAuth
// @Param cycle path int true "周期"
// @Success 201 {object} util.Response{data=service.GenerateReviewResult}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "考试未完成或正在生成"
// @Failure 422 {object} util.Response "考试数据损坏或题量不足"
// @Failure 503 {object} util.Response "考试记录存储不可用"
// @Router /cycles/{cycle}/review-test [post]
func (c *ReviewExamController) Generate(ctx *gin.Context) {
	user, cycle, ok := userAndCycle(ctx)
	if !ok {
		return
	}

	result, err := c.Service.GenerateReviewTest(ctx.Request.Context(), user.UserID, cycle)
	if err != nil {
		writeGenerateError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

func writeGenerateError(ctx *gin.Context, err error) {
	var (
		eligibility *review.EligibilityError
		integrity   *review.DataIntegrityError
		selection   *review.SelectionError
		persistence *review.PersistenceError
	)

	switch {
	case errors.Is(err, util.ErrGenerationInProgress):
		util.Conflict(ctx, err.Error())
	case errors.As(err, &eligibility):
		// 前端据此跳转回考试列表
		util.ErrorWithData(ctx, http.StatusConflict, "complete all exams in this cycle first", gin.H{
			"redirect":  "exams",
			"completed": eligibility.Found,
			"required":  eligibility.Required,
		})
	case errors.As(err, &integrity):
		util.UnprocessableEntity(ctx, integrity.Error())
	case errors.As(err, &selection):
		util.UnprocessableEntity(ctx, selection.Error())
	case errors.As(err, &persistence):
		logger.Log.Error("Review test persistence failed", zap.String("op", persistence.Op), zap.Error(err))
		util.ServiceUnavailable(ctx, "exam session store unavailable")
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 复习卷生成进度
// @Tags 复习卷
// @Produce json
// @Security ApiKeyAuth
// @Param cycle path int true "周期"
// @Success 200 {object} util.Response{data=model.GenerationProgress}
// @Router /cycles/{cycle}/review-test/progress [get]
func (c *ReviewExamController) GetProgress(ctx *gin.Context) {
	user, cycle, ok := userAndCycle(ctx)
	if !ok {
		return
	}

	progress, err := c.Service.GetProgress(ctx.Request.Context(), user.UserID, cycle)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 复习卷生成进度推送
// @Description WebSocket，先推送当前进度，之后每次阶段切换推送一次，到达 done 或 failed 后关闭
// @Tags 复习卷
// @Security ApiKeyAuth
// @Param cycle path int true "周期"
// @Param token query string false "浏览器无法设置请求头时通过查询参数传递令牌"
// @Router /cycles/{cycle}/review-test/progress/ws [get]
func (c *ReviewExamController) StreamProgress(ctx *gin.Context) {
	user, cycle, ok := userAndCycle(ctx)
	if !ok {
		return
	}

	streamCtx, cancel := context.WithCancel(ctx.Request.Context())
	defer cancel()

	events, err := c.Service.SubscribeProgress(streamCtx, user.UserID, cycle)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", user.UserID))
		return
	}
	defer conn.Close()

	// 读循环只处理 pong 和关闭帧
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(p *model.GenerationProgress) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(p)
	}
	closeStream := func() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}

	if current, err := c.Service.GetProgress(streamCtx, user.UserID, cycle); err == nil {
		if err := write(current); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-streamCtx.Done():
			return
		case p, ok := <-events:
			if !ok {
				closeStream()
				return
			}
			if err := write(p); err != nil {
				return
			}
			if review.State(p.State).Terminal() {
				closeStream()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
