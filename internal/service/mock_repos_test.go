package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kutechnest/backend/internal/identity"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/moderation"
	"kutechnest/backend/internal/repository"
	pkgerrors "kutechnest/backend/pkg/errors"
)

// ── Mock AccountRepository ──

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	seq      int

	// beforeCreate 在唯一性检查前调用，用于模拟并发请求抢先写入
	beforeCreate func()
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]*model.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account *model.Account) error {
	if hook := m.beforeCreate; hook != nil {
		m.beforeCreate = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account.Email = strings.ToLower(account.Email)
	for _, a := range m.accounts {
		if a.Email == account.Email {
			return repository.ErrDuplicate
		}
		if account.GoogleID != nil && a.GoogleID != nil && *a.GoogleID == *account.GoogleID {
			return repository.ErrDuplicate
		}
	}
	if account.AccountID == "" {
		m.seq++
		account.AccountID = fmt.Sprintf("acc-%d", m.seq)
	}
	now := time.Now()
	account.CreatedAt, account.UpdatedAt = now, now
	m.accounts[account.AccountID] = account
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByGoogleID(_ context.Context, googleID string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.GoogleID != nil && *a.GoogleID == googleID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) UpdateIdentity(_ context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[account.AccountID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for id, a := range m.accounts {
		if id == account.AccountID {
			continue
		}
		if account.GoogleID != nil && a.GoogleID != nil && *a.GoogleID == *account.GoogleID {
			return repository.ErrDuplicate
		}
	}
	stored.GoogleID = account.GoogleID
	stored.FirstName = account.FirstName
	stored.LastName = account.LastName
	stored.AvatarURL = account.AvatarURL
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *mockAccountRepo) SetPassword(_ context.Context, id, hash string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	a.PasswordHash = &hash
	a.TokenVersion++
	return a.TokenVersion, nil
}

func (m *mockAccountRepo) ClaimProfileKind(_ context.Context, id, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if a.ProfileKind != nil {
		return repository.ErrProfileClaimed
	}
	k := kind
	a.ProfileKind = &k
	return nil
}

func (m *mockAccountRepo) BumpTokenVersion(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	a.TokenVersion++
	return a.TokenVersion, nil
}

func (m *mockAccountRepo) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.IsActive = active
	if !active {
		a.TokenVersion++
	}
	return nil
}

func (m *mockAccountRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	seq      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, st *model.Student) error {
	for _, s := range m.students {
		if s.AccountID == st.AccountID {
			return repository.ErrDuplicate
		}
	}
	if st.StudentID == "" {
		m.seq++
		st.StudentID = fmt.Sprintf("stu-%d", m.seq)
	}
	m.students[st.StudentID] = st
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByAccountID(_ context.Context, accountID string) (*model.Student, error) {
	for _, s := range m.students {
		if s.AccountID == accountID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) UpdateProfile(_ context.Context, st *model.Student) error {
	stored, ok := m.students[st.StudentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := *st
	next.AccountID, next.Email, next.IsApproved = stored.AccountID, stored.Email, stored.IsApproved
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = time.Now()
	*stored = next
	return nil
}

func (m *mockStudentRepo) SetApproved(_ context.Context, id string, approved bool) error {
	stored, ok := m.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.IsApproved = approved
	return nil
}

func (m *mockStudentRepo) List(_ context.Context, filter repository.ReviewFilter, offset, limit int) ([]model.Student, int64, error) {
	var result []model.Student
	for _, s := range m.students {
		if filter.Approved != nil && s.IsApproved != *filter.Approved {
			continue
		}
		if filter.Search != "" && !containsFold(s.Name, filter.Search) && !containsFold(s.Email, filter.Search) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return paginate(result, offset, limit), int64(len(result)), nil
}

// ── Mock CompanyRepository ──

type mockCompanyRepo struct {
	companies map[string]*model.Company
	seq       int
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[string]*model.Company)}
}

func (m *mockCompanyRepo) Create(_ context.Context, c *model.Company) error {
	for _, existing := range m.companies {
		if existing.AccountID == c.AccountID {
			return repository.ErrDuplicate
		}
	}
	if c.CompanyID == "" {
		m.seq++
		c.CompanyID = fmt.Sprintf("com-%d", m.seq)
	}
	m.companies[c.CompanyID] = c
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) GetByAccountID(_ context.Context, accountID string) (*model.Company, error) {
	for _, c := range m.companies {
		if c.AccountID == accountID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) UpdateProfile(_ context.Context, c *model.Company) error {
	stored, ok := m.companies[c.CompanyID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := *c
	next.AccountID, next.IsApproved = stored.AccountID, stored.IsApproved
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = time.Now()
	*stored = next
	return nil
}

func (m *mockCompanyRepo) SetApproved(_ context.Context, id string, approved bool) error {
	stored, ok := m.companies[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.IsApproved = approved
	return nil
}

func (m *mockCompanyRepo) List(_ context.Context, filter repository.ReviewFilter, offset, limit int) ([]model.Company, int64, error) {
	var result []model.Company
	for _, c := range m.companies {
		if filter.Approved != nil && c.IsApproved != *filter.Approved {
			continue
		}
		if filter.Search != "" && !containsFold(c.Name, filter.Search) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CompanyID < result[j].CompanyID })
	return paginate(result, offset, limit), int64(len(result)), nil
}

// ── Mock PostRepository ──

type mockPostRepo struct {
	posts     map[string]*model.Post
	companies *mockCompanyRepo
	seq       int
}

func newMockPostRepo(companies *mockCompanyRepo) *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.Post), companies: companies}
}

func (m *mockPostRepo) Create(_ context.Context, p *model.Post) error {
	if p.PostID == "" {
		m.seq++
		p.PostID = fmt.Sprintf("post-%d", m.seq)
	}
	now := time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	p.CreatedAt, p.UpdatedAt = now, now
	m.posts[p.PostID] = p
	return nil
}

// GetByID 模拟 Preload("Company")，已软删除的不可见
func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok || p.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Company = m.companies.companies[p.CompanyID]
	return &cp, nil
}

func (m *mockPostRepo) Update(_ context.Context, p *model.Post) error {
	stored, ok := m.posts[p.PostID]
	if !ok || stored.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	next := *p
	next.CompanyID, next.CreatedAt, next.DeletedAt = stored.CompanyID, stored.CreatedAt, stored.DeletedAt
	next.Company = nil
	next.UpdatedAt = time.Now()
	p.UpdatedAt = next.UpdatedAt
	*stored = next
	return nil
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	p, ok := m.posts[id]
	if !ok || p.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (m *mockPostRepo) List(_ context.Context, filter repository.PostFilter, offset, limit int) ([]model.Post, int64, error) {
	var result []model.Post
	for _, p := range m.posts {
		if p.DeletedAt.Valid {
			continue
		}
		company := m.companies.companies[p.CompanyID]
		if filter.ApprovedOnly && (company == nil || !company.IsApproved) {
			continue
		}
		if filter.CompanyID != "" && p.CompanyID != filter.CompanyID {
			continue
		}
		if filter.WorkField != "" && p.WorkField != filter.WorkField {
			continue
		}
		if filter.Location != "" && p.Location != filter.Location {
			continue
		}
		if filter.EmploymentType != "" && p.EmploymentType != filter.EmploymentType {
			continue
		}
		if filter.Onsite != nil && p.Onsite != *filter.Onsite {
			continue
		}
		if filter.SalaryMin != nil && p.Salary < *filter.SalaryMin {
			continue
		}
		if filter.SalaryMax != nil && p.Salary > *filter.SalaryMax {
			continue
		}
		if filter.Search != "" {
			companyName := ""
			if company != nil {
				companyName = company.Name
			}
			if !containsFold(p.Title, filter.Search) && !containsFold(p.Description, filter.Search) && !containsFold(companyName, filter.Search) {
				continue
			}
		}
		cp := *p
		cp.Company = company
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, offset, limit), int64(len(result)), nil
}

// ── Mock ApplicationRepository ──

type mockApplicationRepo struct {
	mu       sync.Mutex
	apps     map[string]*model.Application
	posts    *mockPostRepo
	students *mockStudentRepo
	seq      int
}

func newMockApplicationRepo(posts *mockPostRepo, students *mockStudentRepo) *mockApplicationRepo {
	return &mockApplicationRepo{apps: make(map[string]*model.Application), posts: posts, students: students}
}

func (m *mockApplicationRepo) Create(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.PostID == app.PostID && a.StudentID == app.StudentID {
			return repository.ErrDuplicate
		}
	}
	m.seq++
	if app.ApplicationID == "" {
		app.ApplicationID = fmt.Sprintf("app-%d", m.seq)
	}
	app.Version = 1
	now := time.Now()
	app.CreatedAt, app.UpdatedAt = now, now
	stored := *app
	stored.Post, stored.Student = nil, nil
	m.apps[app.ApplicationID] = &stored
	return nil
}

// GetByID 模拟 Preload（职位 Unscoped）
func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.preload(a), nil
}

func (m *mockApplicationRepo) GetByPostAndStudent(_ context.Context, postID, studentID string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.PostID == postID && a.StudentID == studentID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) UpdateStatus(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.apps[app.ApplicationID]
	if !ok || stored.Version != app.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = app.Status
	stored.Version++
	stored.UpdatedAt = time.Now()
	app.Version = stored.Version
	app.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *mockApplicationRepo) List(_ context.Context, filter repository.ApplicationFilter, offset, limit int) ([]model.Application, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Application
	for _, a := range m.apps {
		full := m.preload(a)
		if filter.StudentID != "" && a.StudentID != filter.StudentID {
			continue
		}
		if filter.CompanyID != "" && (full.Post == nil || full.Post.CompanyID != filter.CompanyID) {
			continue
		}
		if filter.PostID != "" && a.PostID != filter.PostID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, *full)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ApplicationID < result[j].ApplicationID })
	if limit <= 0 {
		return result, int64(len(result)), nil
	}
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockApplicationRepo) preload(a *model.Application) *model.Application {
	cp := *a
	if p, ok := m.posts.posts[a.PostID]; ok {
		post := *p
		post.Company = m.posts.companies.companies[p.CompanyID]
		cp.Post = &post
	}
	cp.Student = m.students.students[a.StudentID]
	return &cp
}

func (m *mockApplicationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.apps)
}

// ── 测试夹具 ──

type testEnv struct {
	repo         *repository.Repository
	accounts     *mockAccountRepo
	students     *mockStudentRepo
	companies    *mockCompanyRepo
	posts        *mockPostRepo
	applications *mockApplicationRepo
	logger       *zap.Logger
}

func newTestEnv() *testEnv {
	accounts := newMockAccountRepo()
	students := newMockStudentRepo()
	companies := newMockCompanyRepo()
	posts := newMockPostRepo(companies)
	applications := newMockApplicationRepo(posts, students)
	return &testEnv{
		repo: &repository.Repository{
			Account:     accounts,
			Student:     students,
			Company:     companies,
			Post:        posts,
			Application: applications,
		},
		accounts:     accounts,
		students:     students,
		companies:    companies,
		posts:        posts,
		applications: applications,
		logger:       zap.NewNop(),
	}
}

// addAccount 直接写入账号，绕过注册流程
func (e *testEnv) addAccount(email string, admin bool) *model.Account {
	a := &model.Account{Email: email, IsActive: true, IsAdmin: admin}
	if err := e.accounts.Create(context.Background(), a); err != nil {
		panic(err)
	}
	return a
}

func (e *testEnv) addStudent(account *model.Account, approved bool) *model.Student {
	kind := model.ProfileKindStudent
	account.ProfileKind = &kind
	st := &model.Student{
		AccountID:          account.AccountID,
		Email:              account.Email,
		Name:               "Somchai",
		Phone:              "0812345678",
		CVURL:              "https://cdn.example.com/cv.pdf",
		CoverLetterDefault: "I would like to apply.",
		IsApproved:         approved,
	}
	if err := e.students.Create(context.Background(), st); err != nil {
		panic(err)
	}
	return st
}

func (e *testEnv) addCompany(account *model.Account, name string, approved bool) *model.Company {
	kind := model.ProfileKindCompany
	account.ProfileKind = &kind
	c := &model.Company{
		AccountID:  account.AccountID,
		Name:       name,
		LogoURL:    "https://cdn.example.com/" + strings.ToLower(name) + ".png",
		IsApproved: approved,
	}
	if err := e.companies.Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func (e *testEnv) addPost(company *model.Company, title string) *model.Post {
	p := &model.Post{
		CompanyID:      company.CompanyID,
		Title:          title,
		WorkField:      "backend",
		EmploymentType: "full_time",
		Location:       "bangkok",
		Salary:         30000,
		Requirement:    "Go",
	}
	if err := e.posts.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

// principal 按当前存储状态解析调用方
func (e *testEnv) principal(account *model.Account) *Principal {
	p, err := loadPrincipal(context.Background(), e.repo, account, e.logger)
	if err != nil {
		panic(err)
	}
	return p
}

// ── Fake 依赖 ──

// fakeModerator 返回固定结论
type fakeModerator struct {
	verdict moderation.Verdict
	calls   int
}

func (f *fakeModerator) ReviewPost(context.Context, moderation.PostDraft) moderation.Verdict {
	f.calls++
	return f.verdict
}

func (f *fakeModerator) ReviewCompany(context.Context, moderation.CompanyDraft) moderation.Verdict {
	f.calls++
	return f.verdict
}

func newGateWithScore(valid bool, score float64) (*moderation.Gate, *fakeModerator) {
	m := &fakeModerator{verdict: moderation.Verdict{
		IsValid:         valid,
		ConfidenceScore: score,
		Issues:          []string{},
		Recommendations: []string{},
		Reason:          "fixed",
	}}
	return moderation.NewGate(m, moderation.DefaultThreshold, nil, zap.NewNop()), m
}

// fakeVerifier 以断言字符串为键返回预置声明
type fakeVerifier struct {
	claims map[string]*identity.Claims
}

func (f *fakeVerifier) Verify(_ context.Context, assertion string) (*identity.Claims, error) {
	if c, ok := f.claims[assertion]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, identity.ErrInvalidAssertion
}

// fakeExchanger 授权码到 ID Token 的固定映射
type fakeExchanger struct {
	tokens map[string]string
	calls  int
}

func (f *fakeExchanger) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) (string, error) {
	f.calls++
	if tok, ok := f.tokens[code]; ok {
		return tok, nil
	}
	return "", errors.New("invalid_grant")
}

// memBlacklist 内存版 Token 黑名单
type memBlacklist struct {
	mu   sync.Mutex
	jtis map[string]bool
}

func newMemBlacklist() *memBlacklist { return &memBlacklist{jtis: make(map[string]bool)} }

func (b *memBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = true
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jtis[jti], nil
}

// ── 辅助函数 ──

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
