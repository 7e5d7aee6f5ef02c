package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/repository"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportApplications 导出投递记录为 Excel：管理员全部，企业仅本企业职位
	ExportApplications(ctx context.Context, p *Principal, req *dto.ApplicationListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

var applicationSheetHeaders = []string{
	"投递 ID", "职位", "企业", "学生姓名", "邮箱", "电话", "状态", "简历链接", "求职信", "投递时间", "更新时间",
}

// ═══════════════════════════════════════════════════════════
// ExportApplications 导出投递记录
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "Applications"
//   - 首行表头，冻结首行，开启自动筛选
//   - 按投递时间倒序
func (s *exportService) ExportApplications(ctx context.Context, p *Principal, req *dto.ApplicationListRequest) (*bytes.Buffer, string, error) {
	var filter repository.ApplicationFilter
	switch {
	case p.IsAdmin():
	case p.Role == model.RoleCompany:
		filter.CompanyID = p.Company.CompanyID
	default:
		return nil, "", ErrExportForbidden
	}
	if req != nil {
		if req.Status != "" && !model.IsValidApplicationStatus(req.Status) {
			return nil, "", ErrInvalidStatus
		}
		filter.Status = req.Status
		filter.PostID = req.PostID
	}

	// 1. 全量查询（不分页）
	apps, _, err := s.repo.Application.List(ctx, filter, 0, 0)
	if err != nil {
		s.logger.Error("查询导出投递记录失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 生成 Excel
	buf, err := buildApplicationWorkbook(apps)
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Int("rows", len(apps)), zap.Error(err))
		return nil, "", ErrExportGenerateFailed
	}

	s.logger.Info("投递记录导出完成",
		zap.String("account_id", p.AccountID()),
		zap.Int("rows", len(apps)),
	)
	filename := fmt.Sprintf("applications_%s.xlsx", s.now().Format("20060102_150405"))
	return buf, filename, nil
}

const applicationSheet = "Applications"

var applicationColumnWidths = []float64{38, 30, 24, 20, 28, 16, 14, 40, 50, 20, 20}

// buildApplicationWorkbook 表头加粗冻结，数据行带自动筛选
func buildApplicationWorkbook(apps []model.Application) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(applicationSheet)
	if err != nil {
		return nil, fmt.Errorf("创建工作表: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("删除默认工作表: %w", err)
	}

	for i, w := range applicationColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(applicationSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("设置列宽: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式: %w", err)
	}

	header := make([]interface{}, len(applicationSheetHeaders))
	for i, h := range applicationSheetHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(applicationSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("写入表头: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(applicationSheetHeaders))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(applicationSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("设置表头样式: %w", err)
	}

	for i := range apps {
		row := applicationRow(&apps[i])
		if err := f.SetSheetRow(applicationSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("写入第 %d 行: %w", i+2, err)
		}
	}

	if err := f.SetPanes(applicationSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("冻结表头: %w", err)
	}
	if len(apps) > 0 {
		if err := f.AutoFilter(applicationSheet, fmt.Sprintf("A1:%s%d", lastCol, len(apps)+1), nil); err != nil {
			return nil, fmt.Errorf("设置筛选: %w", err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("写入 buffer: %w", err)
	}
	return buf, nil
}

func applicationRow(a *model.Application) []interface{} {
	var postTitle, companyName, studentName, email, phone string
	if a.Post != nil {
		postTitle = a.Post.Title
		if a.Post.Company != nil {
			companyName = a.Post.Company.Name
		}
	}
	if a.Student != nil {
		studentName = a.Student.Name
		email = a.Student.Email
		phone = a.Student.Phone
	}
	return []interface{}{
		a.ApplicationID,
		postTitle,
		companyName,
		studentName,
		email,
		phone,
		a.Status,
		a.ResumeURL,
		a.CoverLetter,
		a.CreatedAt.Format("2006-01-02 15:04"),
		a.UpdatedAt.Format("2006-01-02 15:04"),
	}
}
