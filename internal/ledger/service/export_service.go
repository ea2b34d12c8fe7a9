package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"github.com/bitfantasy/kosu/internal/ledger/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService 跟踪表格导出（xlsx / CSV）
type ExportService struct {
	repos       *repository.Repositories
	aggregation *AggregationService
}

func NewExportService(repos *repository.Repositories, aggregation *AggregationService) *ExportService {
	return &ExportService{repos: repos, aggregation: aggregation}
}

var monthHeaders = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// exportRow 一个项目在一个半期下的 plan/actual 两行
type exportRow struct {
	project *entity.Project
	link    *entity.PeriodProjectLink
	planned [12]float64
	actual  [12]float64
}

func (s *ExportService) buildRows(ctx context.Context, year int) ([]*exportRow, error) {
	records, err := s.repos.Record.ListByYear(ctx, year)
	if err != nil {
		return nil, backendErr("list records", err)
	}
	links, err := s.repos.Period.ListLinksByYear(ctx, year)
	if err != nil {
		return nil, backendErr("list links", err)
	}

	ids := make([]string, 0, len(links))
	seen := make(map[string]bool)
	for _, l := range links {
		if !seen[l.ProjectID] {
			seen[l.ProjectID] = true
			ids = append(ids, l.ProjectID)
		}
	}
	projects, err := s.repos.Project.FindByIDs(ctx, ids)
	if err != nil {
		return nil, backendErr("list projects", err)
	}
	projectByID := make(map[string]*entity.Project, len(projects))
	for i := range projects {
		projectByID[projects[i].ID] = &projects[i]
	}

	rowByKey := make(map[string]*exportRow)
	var rows []*exportRow
	for i := range links {
		l := &links[i]
		p := projectByID[l.ProjectID]
		if p == nil {
			continue
		}
		row := &exportRow{project: p, link: l}
		rowByKey[l.ProjectID+"|"+l.PeriodLabel] = row
		rows = append(rows, row)
	}

	for _, rec := range records {
		row := rowByKey[rec.ProjectID+"|"+rec.PeriodLabel]
		if row == nil || !entity.ValidMonth(rec.Month) {
			continue
		}
		row.planned[rec.Month-1] = rec.PlannedHours
		row.actual[rec.Month-1] = rec.ActualHours
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].project.DisplayOrder != rows[j].project.DisplayOrder {
			return rows[i].project.DisplayOrder < rows[j].project.DisplayOrder
		}
		return rows[i].link.PeriodLabel < rows[j].link.PeriodLabel
	})
	return rows, nil
}

// Workbook 年度跟踪表 xlsx：每项目每半期 plan/actual 两行，
// 附年度汇总页。
func (s *ExportService) Workbook(ctx context.Context, year int) (*excelize.File, string, error) {
	rows, err := s.buildRows(ctx, year)
	if err != nil {
		return nil, "", err
	}
	summary, err := s.aggregation.YearlySummary(ctx, year)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Records"
	f.SetSheetName("Sheet1", sheet)

	headers := append([]string{"Code", "Name", "Period", "Series"}, monthHeaders...)
	headers = append(headers, "Total", "Rate", "Revenue")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, row := range rows {
		quote := entity.ResolveEffectivePrice(row.project, row.link)
		writeSeries := func(series string, hours [12]float64, rate float64) {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), row.project.Code)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIdx), row.project.Name)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", rowIdx), row.link.PeriodLabel)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx), series)
			var total float64
			for m := 0; m < 12; m++ {
				cell, _ := excelize.CoordinatesToCellName(5+m, rowIdx)
				f.SetCellValue(sheet, cell, hours[m])
				total += hours[m]
			}
			f.SetCellValue(sheet, fmt.Sprintf("Q%d", rowIdx), total)
			f.SetCellValue(sheet, fmt.Sprintf("R%d", rowIdx), rate)
			f.SetCellValue(sheet, fmt.Sprintf("S%d", rowIdx), total*rate)
			rowIdx++
		}
		writeSeries("plan", row.planned, quote.PlanPrice)
		writeSeries("actual", row.actual, quote.ActualPrice)
	}

	summarySheet := "Summary"
	f.NewSheet(summarySheet)
	summaryCells := [][2]interface{}{
		{"Year", summary.Year},
		{"Total planned hours", summary.TotalPlannedHours},
		{"Total actual hours", summary.TotalActualHours},
		{"Total planned revenue", summary.TotalPlannedRevenue},
		{"Total actual revenue", summary.TotalActualRevenue},
		{"Achievement rate (%)", summary.AchievementRate},
		{"License total", summary.LicenseTotal},
		{"Net revenue", summary.NetRevenue},
		{"Profit margin (%)", summary.ProfitMargin},
		{"License cost per hour", summary.LicenseCostPerHour},
		{"Break-even hours", summary.BreakEvenHours},
	}
	for i, kv := range summaryCells {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), kv[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), kv[1])
	}

	filename := fmt.Sprintf("kosu_records_%d.xlsx", year)
	return f, filename, nil
}

// CSV 年度跟踪表 CSV，UTF-8 BOM 开头方便 Excel 直接打开
func (s *ExportService) CSV(ctx context.Context, year int) ([]byte, string, error) {
	rows, err := s.buildRows(ctx, year)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	w := csv.NewWriter(&buf)

	header := append([]string{"code", "name", "period", "series"}, monthHeaders...)
	header = append(header, "total", "rate", "revenue")
	w.Write(header)

	formatHours := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	for _, row := range rows {
		quote := entity.ResolveEffectivePrice(row.project, row.link)
		writeSeries := func(series string, hours [12]float64, rate float64) {
			fields := []string{row.project.Code, row.project.Name, row.link.PeriodLabel, series}
			var total float64
			for m := 0; m < 12; m++ {
				fields = append(fields, formatHours(hours[m]))
				total += hours[m]
			}
			fields = append(fields, formatHours(total), formatHours(rate), formatHours(total*rate))
			w.Write(fields)
		}
		writeSeries("plan", row.planned, quote.PlanPrice)
		writeSeries("actual", row.actual, quote.ActualPrice)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", backendErr("write csv", err)
	}

	filename := fmt.Sprintf("kosu_records_%d.csv", year)
	return buf.Bytes(), filename, nil
}
