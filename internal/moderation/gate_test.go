package moderation

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeModerator struct {
	verdict Verdict
	calls   int
}

func (f *fakeModerator) ReviewPost(context.Context, PostDraft) Verdict {
	f.calls++
	return f.verdict
}

func (f *fakeModerator) ReviewCompany(context.Context, CompanyDraft) Verdict {
	f.calls++
	return f.verdict
}

type countingRecorder struct {
	accepted, rejected int
}

func (r *countingRecorder) ModerationVerdict(_ string, ok bool) {
	if ok {
		r.accepted++
	} else {
		r.rejected++
	}
}

func TestGate_Threshold(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		wantOK  bool
	}{
		{"valid high score", Verdict{IsValid: true, ConfidenceScore: 0.9}, true},
		{"valid at threshold", Verdict{IsValid: true, ConfidenceScore: 0.7}, true},
		{"valid low score", Verdict{IsValid: true, ConfidenceScore: 0.5}, false},
		{"invalid high score", Verdict{IsValid: false, ConfidenceScore: 0.95}, false},
		{"technical failure", FailureVerdict(errors.New("timeout")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			g := NewGate(&fakeModerator{verdict: tt.verdict}, 0.7, rec, zap.NewNop())

			v, err := g.CheckCompany(context.Background(), CompanyDraft{Name: "Acme"})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("期望通过，得到: %v", err)
				}
				if rec.accepted != 1 {
					t.Error("期望记录 1 次通过")
				}
				return
			}

			re, ok := AsRejected(err)
			if !ok {
				t.Fatalf("期望 *RejectedError，得到: %v", err)
			}
			if re.Subject != SubjectCompany || re.Verdict.ConfidenceScore != v.ConfidenceScore {
				t.Errorf("拒绝错误内容不符: %+v", re)
			}
			if rec.rejected != 1 {
				t.Error("期望记录 1 次拒绝")
			}
		})
	}
}

func TestGate_DefaultThreshold(t *testing.T) {
	g := NewGate(&fakeModerator{}, 0, nil, zap.NewNop())
	if g.threshold != DefaultThreshold {
		t.Errorf("期望默认阈值 %v，实际 %v", DefaultThreshold, g.threshold)
	}
	if g.Accepts(Verdict{IsValid: true, ConfidenceScore: 0.69}) {
		t.Error("0.69 不应通过")
	}
}

func TestPassthrough(t *testing.T) {
	g := NewGate(Passthrough{}, 0.7, nil, zap.NewNop())
	if _, err := g.CheckPost(context.Background(), PostDraft{Title: "x"}); err != nil {
		t.Errorf("关闭审核时应直接通过，得到: %v", err)
	}
}

func TestFailureVerdict(t *testing.T) {
	v := FailureVerdict(errors.New("boom"))
	if v.IsValid || v.ConfidenceScore != 0 {
		t.Errorf("故障结论应为 {false, 0}，实际 %+v", v)
	}
	if len(v.Issues) != 1 || v.Issues[0] != "Validation error: boom" {
		t.Errorf("issues 错误: %v", v.Issues)
	}
	if len(v.Recommendations) != 1 || v.Reason == "" {
		t.Errorf("recommendations/reason 错误: %+v", v)
	}
}

func TestFormatAmount(t *testing.T) {
	for in, want := range map[int64]string{0: "0", 999: "999", 35000: "35,000", 1234567: "1,234,567", -1500: "-1,500"} {
		if got := formatAmount(in); got != want {
			t.Errorf("formatAmount(%d) = %q，期望 %q", in, got, want)
		}
	}
}
