// Package identity 校验第三方身份令牌（Google ID Token）
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// ErrInvalidAssertion 签名、过期或格式校验失败
var ErrInvalidAssertion = errors.New("identity: invalid assertion")

// Claims 校验通过后提取的身份声明
// Audience / Issuer 原样返回，由调用方按配置判定
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Picture       string
	Audience      string
	Issuer        string
}

// Verifier 身份令牌校验器
type Verifier interface {
	Verify(ctx context.Context, assertion string) (*Claims, error)
}

// GoogleVerifier 基于 Google 公钥校验 ID Token
type GoogleVerifier struct {
	validator *idtoken.Validator
}

// NewGoogleVerifier 创建校验器，公钥由 idtoken 按缓存头自动刷新
func NewGoogleVerifier(ctx context.Context, opts ...option.ClientOption) (*GoogleVerifier, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		}
	}
	v, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("初始化 Google ID Token 校验器失败: %w", err)
	}
	return &GoogleVerifier{validator: v}, nil
}

// Verify 校验签名与有效期；audience 留空，由 service 按允许列表判定
func (g *GoogleVerifier) Verify(ctx context.Context, assertion string) (*Claims, error) {
	if assertion == "" {
		return nil, ErrInvalidAssertion
	}
	payload, err := g.validator.Validate(ctx, assertion, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	return claimsFromPayload(payload), nil
}

func claimsFromPayload(p *idtoken.Payload) *Claims {
	c := &Claims{
		Subject:  p.Subject,
		Audience: p.Audience,
		Issuer:   p.Issuer,
	}
	c.Email = stringClaim(p.Claims, "email")
	c.GivenName = stringClaim(p.Claims, "given_name")
	c.FamilyName = stringClaim(p.Claims, "family_name")
	c.Picture = stringClaim(p.Claims, "picture")

	switch v := p.Claims["email_verified"].(type) {
	case bool:
		c.EmailVerified = v
	case string:
		c.EmailVerified = v == "true"
	}
	return c
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
