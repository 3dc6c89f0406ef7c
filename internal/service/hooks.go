package service

import (
	"context"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/pkg/logger"
	"mini_lms_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// postCommitHook 事务提交后才执行的副作用（邮件等），失败只记录不返回
type postCommitHook struct {
	name string
	fn   func(ctx context.Context) error
}

type postCommitHooks []postCommitHook

func (h *postCommitHooks) add(name string, fn func(ctx context.Context) error) {
	*h = append(*h, postCommitHook{name: name, fn: fn})
}

func (h postCommitHooks) run(ctx context.Context) {
	for _, hook := range h {
		if err := hook.fn(ctx); err != nil {
			monitoring.HookFailures.WithLabelValues(hook.name).Inc()
			logger.Log.Warn("Post-commit hook failed",
				zap.String("hook", hook.name),
				zap.Error(err),
			)
		}
	}
}

// reportFanoutFailures 记录扇出中单个学员的失败，不影响整体结果
func reportFanoutFailures(fanout string, failures []repository.LearnerFailure, fields ...zap.Field) {
	for _, f := range failures {
		monitoring.FanoutFailures.WithLabelValues(fanout).Inc()
		logger.Log.Warn("Fan-out item failed",
			append(fields,
				zap.String("fanout", fanout),
				zap.Uint("learnerId", f.LearnerID),
				zap.Error(f.Err),
			)...,
		)
	}
}
