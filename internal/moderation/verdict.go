// Package moderation 在职位与企业档案落库前调用 LLM 做内容审核
package moderation

import (
	"context"
	"fmt"
)

// 审核对象
const (
	SubjectPost    = "post"
	SubjectCompany = "company"
)

// Verdict 审核结论
type Verdict struct {
	IsValid         bool     `json:"is_valid"`
	ConfidenceScore float64  `json:"confidence_score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Reason          string   `json:"reason"`
}

// PostDraft 待审核的职位草稿
type PostDraft struct {
	Title           string
	WorkField       string
	EmploymentType  string
	Location        string
	Salary          int64
	MinYear         int
	Requirement     string
	Description     string
	LongDescription string
}

// CompanyDraft 待审核的企业档案草稿
type CompanyDraft struct {
	Name        string
	Website     string
	Location    string
	Description string
	Contacts    string
}

// Moderator 内容审核器
// 实现方不返回错误：任何技术故障都折算为拒绝结论
type Moderator interface {
	ReviewPost(ctx context.Context, draft PostDraft) Verdict
	ReviewCompany(ctx context.Context, draft CompanyDraft) Verdict
}

// FailureVerdict 审核服务故障时的拒绝结论
func FailureVerdict(err error) Verdict {
	return Verdict{
		IsValid:         false,
		ConfidenceScore: 0,
		Issues:          []string{fmt.Sprintf("Validation error: %v", err)},
		Recommendations: []string{"Please try again or contact support"},
		Reason:          "Failed to validate submission due to technical error",
	}
}

// Passthrough 关闭审核时使用，恒定通过
type Passthrough struct{}

func (Passthrough) ReviewPost(context.Context, PostDraft) Verdict { return passVerdict() }

func (Passthrough) ReviewCompany(context.Context, CompanyDraft) Verdict { return passVerdict() }

func passVerdict() Verdict {
	return Verdict{
		IsValid:         true,
		ConfidenceScore: 1,
		Issues:          []string{},
		Recommendations: []string{},
		Reason:          "moderation disabled",
	}
}
