package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kutechnest/backend/config"
	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/identity"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/repository"
	"kutechnest/backend/pkg/jwt"
)

const minPasswordLength = 8

// Google ID Token 允许的签发方
var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// TokenBlacklist JWT ID 黑名单（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthRecorder 认证事件计数
type AuthRecorder interface {
	AuthEvent(event string, ok bool)
}

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// GoogleLogin 以 Google ID Token 换取本系统 Token；同一邮箱始终落到同一账号
	GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.GoogleLoginResponse, error)
	// GoogleAuthURL 授权码流程第一步，role 随 state 一起带到回调
	GoogleAuthURL(role string) (*dto.GoogleAuthURLResponse, error)
	// GoogleCallback 以授权码换取 ID Token，随后与 GoogleLogin 走同一条校验与关联路径
	GoogleCallback(ctx context.Context, req *dto.GoogleCallbackRequest) (*dto.GoogleLoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 使该账号全部 Refresh Token 失效，并拉黑当前 Access Token
	Logout(ctx context.Context, accountID string, accessJTI string, accessExpiresAt time.Time) error
	GetCurrentUser(ctx context.Context, p *Principal) *dto.UserResponse
	ChangePassword(ctx context.Context, accountID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	verifier  identity.Verifier
	oauth     identity.CodeExchanger
	blacklist TokenBlacklist
	recorder  AuthRecorder
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；oauth / blacklist / recorder 可为 nil
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	verifier identity.Verifier,
	oauth identity.CodeExchanger,
	blacklist TokenBlacklist,
	recorder AuthRecorder,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		verifier:  verifier,
		oauth:     oauth,
		blacklist: blacklist,
		recorder:  recorder,
		logger:    logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	resp, err := s.register(ctx, req)
	s.record("register", err == nil)
	return resp, err
}

func (s *authService) register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repo.Account.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		s.logger.Error("查询账号失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}
	hashStr := string(hash)

	account := &model.Account{
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: &hashStr,
		IsActive:     true,
	}
	if err := s.repo.Account.Create(ctx, account); err != nil {
		// 并发注册同一邮箱：唯一索引兜底
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("创建账号失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("账号注册成功", zap.String("account_id", account.AccountID))
	return s.issue(ctx, account)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	resp, err := s.login(ctx, req)
	s.record("login", err == nil)
	return resp, err
}

func (s *authService) login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	account, err := s.repo.Account.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询账号失败", zap.Error(err))
		return nil, err
	}

	// 第三方登录创建的账号没有可用密码
	if !account.HasUsablePassword() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	s.touchLogin(ctx, account)
	return s.issue(ctx, account)
}

// ────────────────────── GoogleLogin ──────────────────────

func (s *authService) GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.GoogleLoginResponse, error) {
	resp, err := s.googleLogin(ctx, req)
	s.record("google", err == nil)
	return resp, err
}

func (s *authService) googleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.GoogleLoginResponse, error) {
	claims, err := s.verifyAssertion(ctx, req.Assertion())
	if err != nil {
		return nil, err
	}

	account, created, err := s.exchangeIdentity(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	s.touchLogin(ctx, account)

	principal, err := loadPrincipal(ctx, s.repo, account, s.logger)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwtMgr.GeneratePair(account.AccountID, account.TokenVersion)
	if err != nil {
		s.logger.Error("生成 Token 失败", zap.Error(err))
		return nil, err
	}

	if created {
		s.logger.Info("Google 登录创建新账号", zap.String("account_id", account.AccountID))
	}

	return &dto.GoogleLoginResponse{
		OK:            true,
		Created:       created,
		ProfileStatus: profileStatus(principal, req.Role),
		Access:        pair.AccessToken,
		Refresh:       pair.RefreshToken,
		ExpiresIn:     int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:          toUserResponse(principal),
	}, nil
}

// ────────────────────── Google 授权码流程 ──────────────────────

func (s *authService) GoogleAuthURL(role string) (*dto.GoogleAuthURLResponse, error) {
	if s.oauth == nil {
		return nil, ErrOAuthDisabled
	}
	state, err := s.jwtMgr.GenerateState(role, s.cfg.Auth.Google.StateTTL)
	if err != nil {
		s.logger.Error("生成 OAuth state 失败", zap.Error(err))
		return nil, err
	}
	return &dto.GoogleAuthURLResponse{AuthURL: s.oauth.AuthCodeURL(state), State: state}, nil
}

func (s *authService) GoogleCallback(ctx context.Context, req *dto.GoogleCallbackRequest) (*dto.GoogleLoginResponse, error) {
	resp, err := s.googleCallback(ctx, req)
	s.record("google_callback", err == nil)
	return resp, err
}

func (s *authService) googleCallback(ctx context.Context, req *dto.GoogleCallbackRequest) (*dto.GoogleLoginResponse, error) {
	if s.oauth == nil {
		return nil, ErrOAuthDisabled
	}
	state, err := s.jwtMgr.ParseState(req.State)
	if err != nil {
		s.logger.Info("OAuth state 校验失败", zap.Error(err))
		return nil, ErrOAuthState
	}
	if req.Error != "" {
		s.logger.Info("Google 授权未完成", zap.String("error", req.Error))
		return nil, ErrOAuthDenied
	}
	if req.Code == "" {
		return nil, ErrOAuthExchange
	}

	idToken, err := s.oauth.Exchange(ctx, req.Code)
	if err != nil {
		s.logger.Warn("Google 授权码换取失败", zap.Error(err))
		return nil, ErrOAuthExchange
	}
	return s.googleLogin(ctx, &dto.GoogleLoginRequest{IDToken: idToken, Role: state.Role})
}

// verifyAssertion 校验签名后再按配置判定受众、签发方与邮箱
func (s *authService) verifyAssertion(ctx context.Context, assertion string) (*identity.Claims, error) {
	if assertion == "" {
		return nil, ErrInvalidAssertion
	}
	claims, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		s.logger.Info("Google ID Token 校验失败", zap.Error(err))
		return nil, ErrInvalidAssertion
	}
	if !s.audienceAllowed(claims.Audience) {
		s.logger.Warn("Google ID Token 受众不匹配", zap.String("aud", claims.Audience))
		return nil, ErrAssertionAudience
	}
	if !googleIssuers[claims.Issuer] {
		return nil, ErrAssertionIssuer
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, ErrAssertionNoEmail
	}
	if !claims.EmailVerified {
		return nil, ErrEmailUnverified
	}
	return claims, nil
}

func (s *authService) audienceAllowed(aud string) bool {
	for _, id := range s.cfg.Auth.Google.ClientIDs {
		if id != "" && id == aud {
			return true
		}
	}
	return false
}

// exchangeIdentity 先按 google_id、再按邮箱查找账号，都没有则创建
// 并发创建时唯一索引冲突，重试一次即可取到已存在的账号
func (s *authService) exchangeIdentity(ctx context.Context, claims *identity.Claims) (*model.Account, bool, error) {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		account, created, err := s.linkOrCreate(ctx, claims)
		if err == nil {
			return account, created, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, err
		}
		lastErr = err
		s.logger.Info("并发创建账号冲突，重新查询", zap.Int("attempt", attempt+1))
	}
	s.logger.Error("Google 账号关联失败", zap.Error(lastErr))
	return nil, false, lastErr
}

func (s *authService) linkOrCreate(ctx context.Context, claims *identity.Claims) (*model.Account, bool, error) {
	// 1. 按 google_id 查找
	account, err := s.repo.Account.GetByGoogleID(ctx, claims.Subject)
	if err == nil {
		if fillProfileFromClaims(account, claims) {
			if err := s.repo.Account.UpdateIdentity(ctx, account); err != nil {
				s.logger.Error("更新账号失败", zap.Error(err))
				return nil, false, err
			}
		}
		return account, false, nil
	}
	if !repository.IsNotFound(err) {
		s.logger.Error("按 google_id 查询账号失败", zap.Error(err))
		return nil, false, err
	}

	// 2. 按邮箱查找：邮箱是唯一的去重键
	email := normalizeEmail(claims.Email)
	account, err = s.repo.Account.GetByEmail(ctx, email)
	if err == nil {
		changed, err := s.applyLinkPolicy(account, claims.Subject)
		if err != nil {
			return nil, false, err
		}
		if fillProfileFromClaims(account, claims) {
			changed = true
		}
		if changed {
			if err := s.repo.Account.UpdateIdentity(ctx, account); err != nil {
				if !errors.Is(err, repository.ErrDuplicate) {
					s.logger.Error("关联 Google 账号失败", zap.Error(err))
				}
				return nil, false, err
			}
		}
		return account, false, nil
	}
	if !repository.IsNotFound(err) {
		s.logger.Error("按邮箱查询账号失败", zap.Error(err))
		return nil, false, err
	}

	// 3. 新建账号，无可用密码
	sub := claims.Subject
	account = &model.Account{
		Email:    email,
		GoogleID: &sub,
		IsActive: true,
	}
	fillProfileFromClaims(account, claims)
	if err := s.repo.Account.Create(ctx, account); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			s.logger.Error("创建账号失败", zap.Error(err))
		}
		return nil, false, err
	}
	return account, true, nil
}

// applyLinkPolicy 邮箱匹配的账号已绑定其他 google_id 时按配置处理
func (s *authService) applyLinkPolicy(account *model.Account, subject string) (bool, error) {
	if account.GoogleID == nil || *account.GoogleID == "" {
		account.GoogleID = &subject
		return true, nil
	}
	if *account.GoogleID == subject {
		return false, nil
	}

	switch s.cfg.Auth.Google.LinkPolicy {
	case config.LinkPolicyReject:
		s.logger.Warn("邮箱已绑定其他 Google 账号，拒绝登录", zap.String("account_id", account.AccountID))
		return false, ErrIdentityLinked
	case config.LinkPolicyOverwrite:
		s.logger.Warn("邮箱已绑定其他 Google 账号，覆盖绑定", zap.String("account_id", account.AccountID))
		account.GoogleID = &subject
		return true, nil
	default:
		return false, nil
	}
}

// fillProfileFromClaims 只填充空白的姓名与头像，返回是否有改动
func fillProfileFromClaims(account *model.Account, claims *identity.Claims) bool {
	changed := false
	if strings.TrimSpace(account.FirstName) == "" && claims.GivenName != "" {
		account.FirstName = claims.GivenName
		changed = true
	}
	if strings.TrimSpace(account.LastName) == "" && claims.FamilyName != "" {
		account.LastName = claims.FamilyName
		changed = true
	}
	if account.AvatarURL == "" && claims.Picture != "" {
		account.AvatarURL = claims.Picture
		changed = true
	}
	return changed
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	resp, err := s.refresh(ctx, refreshToken)
	s.record("refresh", err == nil)
	return resp, err
}

func (s *authService) refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		blocked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Redis 故障时降级：仍有 token_version 兜底
			s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		} else if blocked {
			return nil, ErrInvalidRefreshToken
		}
	}

	account, err := s.repo.Account.GetByID(ctx, claims.AccountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询账号失败", zap.Error(err))
		return nil, err
	}
	if claims.TokenVersion != account.TokenVersion {
		return nil, ErrInvalidRefreshToken
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	// 轮换：旧 Refresh Token 立即作废
	s.revokeJTI(ctx, claims.ID, claims.ExpiresAt.Time)

	return s.issue(ctx, account)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, accountID string, accessJTI string, accessExpiresAt time.Time) error {
	if _, err := s.repo.Account.BumpTokenVersion(ctx, accountID); err != nil {
		if repository.IsNotFound(err) {
			return ErrAccountNotFound
		}
		s.logger.Error("递增 token_version 失败", zap.String("account_id", accountID), zap.Error(err))
		return err
	}
	if accessJTI != "" {
		s.revokeJTI(ctx, accessJTI, accessExpiresAt)
	}
	s.record("logout", true)
	s.logger.Info("账号已登出全部会话", zap.String("account_id", accountID))
	return nil
}

// ────────────────────── Me / Password ──────────────────────

func (s *authService) GetCurrentUser(_ context.Context, p *Principal) *dto.UserResponse {
	resp := toUserResponse(p)
	return &resp
}

func (s *authService) ChangePassword(ctx context.Context, accountID string, req *dto.ChangePasswordRequest) error {
	account, err := s.repo.Account.GetByID(ctx, accountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrAccountNotFound
		}
		s.logger.Error("查询账号失败", zap.Error(err))
		return err
	}

	// 已有密码时必须校验原密码
	if account.HasUsablePassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(req.OldPassword)); err != nil {
			return ErrOldPasswordMismatch
		}
	}
	if len(req.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return err
	}
	if _, err := s.repo.Account.SetPassword(ctx, account.AccountID, string(hash)); err != nil {
		s.logger.Error("更新密码失败", zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

// issue 签发 Token 对并组装响应
func (s *authService) issue(ctx context.Context, account *model.Account) (*dto.TokenResponse, error) {
	principal, err := loadPrincipal(ctx, s.repo, account, s.logger)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwtMgr.GeneratePair(account.AccountID, account.TokenVersion)
	if err != nil {
		s.logger.Error("生成 Token 失败", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		Access:    pair.AccessToken,
		Refresh:   pair.RefreshToken,
		ExpiresIn: int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:      toUserResponse(principal),
	}, nil
}

func (s *authService) revokeJTI(ctx context.Context, jti string, expiresAt time.Time) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.Error(err))
	}
}

func (s *authService) touchLogin(ctx context.Context, account *model.Account) {
	now := time.Now()
	if err := s.repo.Account.TouchLastLogin(ctx, account.AccountID, now); err != nil {
		s.logger.Warn("更新最后登录时间失败", zap.Error(err))
		return
	}
	account.LastLoginAt = &now
}

func (s *authService) record(event string, ok bool) {
	if s.recorder != nil {
		s.recorder.AuthEvent(event, ok)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(p *Principal) dto.UserResponse {
	a := p.Account
	return dto.UserResponse{
		ID:         a.AccountID,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Role:       string(p.Role),
		IsApproved: p.ApprovalFlag(),
		AvatarURL:  a.AvatarURL,
		IsActive:   a.IsActive,
	}
}
