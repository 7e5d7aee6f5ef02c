package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/moderation"
	pkgerrors "kutechnest/backend/pkg/errors"
)

func setupTestProfileService(valid bool, score float64) (*testEnv, ProfileService, *fakeModerator) {
	env := newTestEnv()
	gate, m := newGateWithScore(valid, score)
	return env, NewProfileService(env.repo, gate, env.logger), m
}

// ── 角色解析 ──

func TestResolveRole_Precedence(t *testing.T) {
	student := &model.Student{}
	company := &model.Company{}

	tests := []struct {
		name    string
		admin   bool
		student *model.Student
		company *model.Company
		want    model.Role
	}{
		{"无档案", false, nil, nil, model.RoleUser},
		{"学生", false, student, nil, model.RoleStudent},
		{"企业", false, nil, company, model.RoleCompany},
		{"企业优先于学生", false, student, company, model.RoleCompany},
		{"管理员优先", true, student, company, model.RoleAdmin},
		{"仅管理员", true, nil, nil, model.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRole(&model.Account{IsAdmin: tt.admin}, tt.student, tt.company)
			if got != tt.want {
				t.Errorf("期望 %s, 得到 %s", tt.want, got)
			}
		})
	}
}

func TestResolve_LoadsProfiles(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	a := env.addAccount("s@x.com", false)
	st := env.addStudent(a, true)

	p, err := svc.Resolve(context.Background(), a.AccountID)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if p.Role != model.RoleStudent || p.Student == nil || p.Student.StudentID != st.StudentID {
		t.Errorf("期望解析为学生: %+v", p)
	}
	if p.Company != nil {
		t.Error("不应加载企业档案")
	}

	if _, err := svc.Resolve(context.Background(), "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("期望 ErrAccountNotFound, 得到 %v", err)
	}
}

// ── 注册 ──

func TestRegisterStudent_Success(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	a := env.addAccount("stud@x.com", false)
	p := env.principal(a)

	st, err := svc.RegisterStudent(context.Background(), p, &dto.StudentRegisterRequest{Name: " Nok ", Faculty: "Engineering"})
	if err != nil {
		t.Fatalf("注册学生档案失败: %v", err)
	}
	if st.IsApproved {
		t.Error("新档案应为待审核")
	}
	if st.Email != "stud@x.com" || st.Name != "Nok" {
		t.Errorf("档案字段不符: %+v", st)
	}
	if a.ProfileKind == nil || *a.ProfileKind != model.ProfileKindStudent {
		t.Error("期望声明 profile_kind=student")
	}
	if resolved := env.principal(a); resolved.Role != model.RoleStudent {
		t.Errorf("注册后角色应为 student, 得到 %s", resolved.Role)
	}
}

func TestRegisterCompany_AcceptedPersistsPending(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	a := env.addAccount("acme@x.com", false)

	c, verdict, err := svc.RegisterCompany(context.Background(), env.principal(a), &dto.CompanyRegisterRequest{
		Name:        "Acme",
		Description: "Software house",
	})
	if err != nil {
		t.Fatalf("注册企业失败: %v", err)
	}
	if c.IsApproved {
		t.Error("新企业应为待审核")
	}
	if verdict == nil || verdict.ConfidenceScore != 0.9 {
		t.Errorf("期望返回审核结论, 得到 %+v", verdict)
	}
	if len(env.companies.companies) != 1 {
		t.Errorf("期望 1 条企业记录, 得到 %d", len(env.companies.companies))
	}
}

func TestRegisterCompany_RejectedWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		score float64
	}{
		{"低置信度", true, 0.5},
		{"判定无效", false, 0.95},
		{"边界以下", true, 0.69},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, svc, _ := setupTestProfileService(tt.valid, tt.score)
			a := env.addAccount("bad@x.com", false)

			_, verdict, err := svc.RegisterCompany(context.Background(), env.principal(a), &dto.CompanyRegisterRequest{Name: "Shady"})
			rejected, ok := moderation.AsRejected(err)
			if !ok {
				t.Fatalf("期望审核拒绝错误, 得到 %v", err)
			}
			if rejected.Verdict.ConfidenceScore != tt.score {
				t.Errorf("拒绝错误应携带结论")
			}
			if verdict == nil {
				t.Error("拒绝时也应返回结论")
			}
			if len(env.companies.companies) != 0 {
				t.Error("审核未通过不应写入企业")
			}
			if a.ProfileKind != nil {
				t.Error("审核未通过不应声明 profile_kind")
			}
		})
	}
}

func TestRegisterCompany_ThresholdInclusive(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, moderation.DefaultThreshold)
	a := env.addAccount("edge@x.com", false)

	if _, _, err := svc.RegisterCompany(context.Background(), env.principal(a), &dto.CompanyRegisterRequest{Name: "Edge"}); err != nil {
		t.Errorf("置信度等于阈值应通过, 得到 %v", err)
	}
}

func TestRegister_MutualExclusion(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	ctx := context.Background()

	studentAcc := env.addAccount("s@x.com", false)
	env.addStudent(studentAcc, false)
	companyAcc := env.addAccount("c@x.com", false)
	env.addCompany(companyAcc, "Acme", false)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"学生再注册学生", func() error {
			_, err := svc.RegisterStudent(ctx, env.principal(studentAcc), &dto.StudentRegisterRequest{Name: "x", Faculty: "y"})
			return err
		}, ErrProfileExists},
		{"学生注册企业", func() error {
			_, _, err := svc.RegisterCompany(ctx, env.principal(studentAcc), &dto.CompanyRegisterRequest{Name: "x"})
			return err
		}, ErrRoleTaken},
		{"企业注册学生", func() error {
			_, err := svc.RegisterStudent(ctx, env.principal(companyAcc), &dto.StudentRegisterRequest{Name: "x", Faculty: "y"})
			return err
		}, ErrRoleTaken},
		{"企业再注册企业", func() error {
			_, _, err := svc.RegisterCompany(ctx, env.principal(companyAcc), &dto.CompanyRegisterRequest{Name: "x"})
			return err
		}, ErrProfileExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v, 得到 %v", tt.wantErr, err)
			}
			if pkgerrors.KindOf(err) != pkgerrors.KindConflict {
				t.Errorf("期望 Conflict, 得到 %v", pkgerrors.KindOf(err))
			}
		})
	}
	if len(env.students.students) != 1 || len(env.companies.companies) != 1 {
		t.Error("冲突时不应写入档案")
	}
}

func TestRegister_ConcurrentDifferentKinds(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	a := env.addAccount("both@x.com", false)
	ctx := context.Background()

	// 两个请求在同一快照上解析，均看不到对方的档案
	pStudent := env.principal(a)
	pCompany := env.principal(a)
	studentView, companyView := *a, *a
	pStudent.Account = &studentView
	pCompany.Account = &companyView

	var wg sync.WaitGroup
	var errStudent, errCompany error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errStudent = svc.RegisterStudent(ctx, pStudent, &dto.StudentRegisterRequest{Name: "x", Faculty: "y"})
	}()
	go func() {
		defer wg.Done()
		_, _, errCompany = svc.RegisterCompany(ctx, pCompany, &dto.CompanyRegisterRequest{Name: "x"})
	}()
	wg.Wait()

	if (errStudent == nil) == (errCompany == nil) {
		t.Fatalf("期望恰好一个成功: student=%v company=%v", errStudent, errCompany)
	}
	for _, err := range []error{errStudent, errCompany} {
		if err != nil && !errors.Is(err, ErrRoleTaken) {
			t.Errorf("失败方应返回 ErrRoleTaken, 得到 %v", err)
		}
	}
}

// ── 自助维护 ──

func TestUpdateStudent_CannotSelfApprove(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	a := env.addAccount("s@x.com", false)
	env.addStudent(a, false)
	p := env.principal(a)

	st, err := svc.UpdateStudent(context.Background(), p, &dto.StudentUpdateRequest{Phone: strPtr("0899999999")})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if st.Phone != "0899999999" {
		t.Errorf("电话未更新: %q", st.Phone)
	}
	if st.IsApproved {
		t.Error("自助更新不得改变审核状态")
	}

	if _, err := svc.UpdateStudent(context.Background(), env.principal(env.addAccount("u@x.com", false)), &dto.StudentUpdateRequest{}); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("期望 ErrProfileNotFound, 得到 %v", err)
	}
}

// 档案本人持有审核前的快照，自助更新后管理员的审核结果仍保留
func TestUpdateStudent_StaleSnapshotKeepsApproval(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	ctx := context.Background()
	a := env.addAccount("s@x.com", false)
	st := env.addStudent(a, false)

	p := env.principal(a)
	snapshot := *p.Student
	p.Student = &snapshot

	admin := NewAdminService(env.repo, env.logger)
	if _, err := admin.SetStudentApproval(ctx, env.principal(env.addAccount("admin@x.com", true)), a.AccountID, true); err != nil {
		t.Fatalf("审核失败: %v", err)
	}

	if _, err := svc.UpdateStudent(ctx, p, &dto.StudentUpdateRequest{Major: strPtr("Physics")}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	stored := env.students.students[st.StudentID]
	if !stored.IsApproved {
		t.Error("审核状态被自助更新覆盖")
	}
	if stored.Major != "Physics" {
		t.Errorf("major 未写入: %q", stored.Major)
	}
}

func TestUpdateCompany_StaleSnapshotKeepsRevocation(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	ctx := context.Background()
	a := env.addAccount("c@x.com", false)
	c := env.addCompany(a, "Acme", true)

	p := env.principal(a)
	snapshot := *p.Company
	p.Company = &snapshot

	admin := NewAdminService(env.repo, env.logger)
	if _, err := admin.SetCompanyApproval(ctx, env.principal(env.addAccount("admin@x.com", true)), a.AccountID, false); err != nil {
		t.Fatalf("撤销审核失败: %v", err)
	}

	if _, _, err := svc.UpdateCompany(ctx, p, &dto.CompanyUpdateRequest{Location: strPtr("Bangkok")}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if env.companies.companies[c.CompanyID].IsApproved {
		t.Error("撤销的审核被自助更新恢复")
	}
}

func TestUpdateCompany_Remoderated(t *testing.T) {
	env, svc, m := setupTestProfileService(true, 0.9)
	a := env.addAccount("c@x.com", false)
	c := env.addCompany(a, "Acme", true)

	updated, _, err := svc.UpdateCompany(context.Background(), env.principal(a), &dto.CompanyUpdateRequest{Website: strPtr("https://acme.example.com")})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.Website != "https://acme.example.com" || !updated.IsApproved {
		t.Errorf("更新结果不符: %+v", updated)
	}
	if m.calls != 1 {
		t.Errorf("期望审核 1 次, 得到 %d", m.calls)
	}

	m.verdict.ConfidenceScore = 0.1
	_, _, err = svc.UpdateCompany(context.Background(), env.principal(a), &dto.CompanyUpdateRequest{Name: strPtr("Scam Inc")})
	if _, ok := moderation.AsRejected(err); !ok {
		t.Fatalf("期望审核拒绝, 得到 %v", err)
	}
	if env.companies.companies[c.CompanyID].Name != "Acme" {
		t.Error("审核未通过时不应写入")
	}
}

func TestGetOwnProfile(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	a := env.addAccount("c@x.com", false)
	env.addCompany(a, "Acme", false)

	resp, err := svc.GetOwnProfile(context.Background(), env.principal(a))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if resp.Role != string(model.RoleCompany) {
		t.Errorf("期望 company, 得到 %s", resp.Role)
	}

	plain := env.addAccount("p@x.com", false)
	if _, err := svc.GetOwnProfile(context.Background(), env.principal(plain)); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("期望 ErrProfileNotFound, 得到 %v", err)
	}
}

// ── 公开企业目录 ──

func TestCompanyDirectory_ApprovedOnly(t *testing.T) {
	env, svc, _ := setupTestProfileService(true, 0.9)
	ctx := context.Background()
	approved := env.addCompany(env.addAccount("a@x.com", false), "Acme", true)
	pending := env.addCompany(env.addAccount("b@x.com", false), "Beta", false)

	list, total, err := svc.ListCompanies(ctx, &dto.CompanyListRequest{})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].CompanyID != approved.CompanyID {
		t.Errorf("期望仅返回已审核企业, 得到 %+v", list)
	}

	if _, err := svc.GetCompany(ctx, pending.CompanyID); !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("未审核企业应不可见, 得到 %v", err)
	}
	if _, err := svc.GetCompany(ctx, approved.CompanyID); err != nil {
		t.Errorf("已审核企业应可见, 得到 %v", err)
	}
}
