package controller

import (
	"errors"
	"exam_prep_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ExamSessionController struct {
	Service ReviewExamService
}

func NewExamSessionController(svc ReviewExamService) *ExamSessionController {
	return &ExamSessionController{Service: svc}
}

// @Summary 获取考试记录
// @Description 返回考试记录及题目，复习卷生成后前端用它加载试卷
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "考试记录ID"
// @Success 200 {object} util.Response{data=model.ExamSession}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /exam-sessions/{id} [get]
func (c *ExamSessionController) GetSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.Service.GetSession(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, session)
	}
}

// @Summary 周期内的考试列表
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param cycle path int true "周期"
// @Success 200 {object} util.Response{data=[]model.ExamSessionSummary}
// @Router /cycles/{cycle}/sessions [get]
func (c *ExamSessionController) ListSessions(ctx *gin.Context) {
	user, cycle, ok := userAndCycle(ctx)
	if !ok {
		return
	}

	sessions, err := c.Service.ListSessions(ctx.Request.Context(), user.UserID, cycle)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": sessions, "total": len(sessions)})
}
