package moderation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultThreshold 通过所需的最低置信度
const DefaultThreshold = 0.7

// RejectedError 审核未通过，携带结论供调用方修改后重试
type RejectedError struct {
	Subject string
	Verdict Verdict
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected by moderation: %s (score %.2f)", e.Subject, e.Verdict.Reason, e.Verdict.ConfidenceScore)
}

// AsRejected 提取审核拒绝错误
func AsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// Recorder 审核结果计数
type Recorder interface {
	ModerationVerdict(subject string, accepted bool)
}

// Gate 按阈值放行：is_valid 且 confidence_score ≥ threshold
type Gate struct {
	moderator Moderator
	threshold float64
	recorder  Recorder
	logger    *zap.Logger
}

// NewGate 创建审核闸门；recorder 可为 nil
func NewGate(m Moderator, threshold float64, recorder Recorder, logger *zap.Logger) *Gate {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Gate{moderator: m, threshold: threshold, recorder: recorder, logger: logger}
}

// CheckPost 审核职位草稿，未通过返回 *RejectedError
func (g *Gate) CheckPost(ctx context.Context, draft PostDraft) (Verdict, error) {
	return g.decide(SubjectPost, g.moderator.ReviewPost(ctx, draft))
}

// CheckCompany 审核企业档案草稿，未通过返回 *RejectedError
func (g *Gate) CheckCompany(ctx context.Context, draft CompanyDraft) (Verdict, error) {
	return g.decide(SubjectCompany, g.moderator.ReviewCompany(ctx, draft))
}

// Accepts 结论是否达到放行条件
func (g *Gate) Accepts(v Verdict) bool {
	return v.IsValid && v.ConfidenceScore >= g.threshold
}

func (g *Gate) decide(subject string, v Verdict) (Verdict, error) {
	accepted := g.Accepts(v)
	if g.recorder != nil {
		g.recorder.ModerationVerdict(subject, accepted)
	}
	if !accepted {
		g.logger.Info("内容审核未通过",
			zap.String("subject", subject),
			zap.Bool("is_valid", v.IsValid),
			zap.Float64("confidence_score", v.ConfidenceScore),
			zap.String("reason", v.Reason),
		)
		return v, &RejectedError{Subject: subject, Verdict: v}
	}
	return v, nil
}
