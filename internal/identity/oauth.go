package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoIDToken 令牌端点未返回 id_token（通常是 scope 缺少 openid）
var ErrNoIDToken = errors.New("identity: token response has no id_token")

// CodeExchanger 授权码流程：生成授权地址，并以授权码换取 ID Token
type CodeExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// GoogleOAuth 基于 oauth2.Config 的 Google 授权码流程
type GoogleOAuth struct {
	cfg *oauth2.Config
}

// NewGoogleOAuth 创建授权码流程；endpoint 为零值时使用 Google 官方端点
func NewGoogleOAuth(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint) *GoogleOAuth {
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	return &GoogleOAuth{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}}
}

// ClientID 授权码流程使用的客户端 ID
func (g *GoogleOAuth) ClientID() string { return g.cfg.ClientID }

func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange 换取令牌并取出 id_token，签名校验交给 Verifier
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("授权码换取令牌失败: %w", err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrNoIDToken
	}
	return idToken, nil
}
