package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"kutechnest/backend/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

const (
	TokenTypeAccess     = "access"
	TokenTypeRefresh    = "refresh"
	TokenTypeOAuthState = "oauth_state"
)

// Claims 自定义 JWT 声明
// 角色不写入 Token：每个请求按账号实时解析
type Claims struct {
	AccountID    string `json:"account_id"`
	TokenType    string `json:"token_type"`              // "access" | "refresh"
	TokenVersion int    `json:"token_version,omitempty"` // 仅 refresh token 使用
	jwtv5.RegisteredClaims
}

// Pair 一次签发的 Access/Refresh Token 对
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Manager JWT 管理器
type Manager struct {
	secret          []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "kutechnest"
	}
	return &Manager{
		secret:          []byte(cfg.JWTSecret),
		issuer:          issuer,
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
	}
}

// AccessTokenTTL Access Token 有效期
func (m *Manager) AccessTokenTTL() time.Duration { return m.accessTokenTTL }

// GenerateAccessToken 生成 Access Token
func (m *Manager) GenerateAccessToken(accountID string) (string, time.Time, error) {
	return m.sign(accountID, TokenTypeAccess, 0, m.accessTokenTTL)
}

// GenerateRefreshToken 生成 Refresh Token，version 与账号 token_version 绑定
func (m *Manager) GenerateRefreshToken(accountID string, version int) (string, time.Time, error) {
	return m.sign(accountID, TokenTypeRefresh, version, m.refreshTokenTTL)
}

// GeneratePair 同时生成 Access/Refresh Token
func (m *Manager) GeneratePair(accountID string, version int) (*Pair, error) {
	access, accessExp, err := m.GenerateAccessToken(accountID)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := m.GenerateRefreshToken(accountID, version)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) sign(accountID, tokenType string, version int, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		AccountID:    accountID,
		TokenType:    tokenType,
		TokenVersion: version,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   accountID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
			Issuer:    m.issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 解析并验证 Token
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// StateClaims OAuth 授权码流程的 state，只携带登录意图
type StateClaims struct {
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwtv5.RegisteredClaims
}

// GenerateState 签发短时有效的 state，回调时原样带回
func (m *Manager) GenerateState(role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := StateClaims{
		Role:      role,
		TokenType: TokenTypeOAuthState,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			Issuer:    m.issuer,
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseState 校验 state 的签名、有效期与类型
func (m *Manager) ParseState(state string) (*StateClaims, error) {
	token, err := jwtv5.ParseWithClaims(state, &StateClaims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid || claims.TokenType != TokenTypeOAuthState {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
