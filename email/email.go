// Package email renders the HTML report emails sent to dealership
// management.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dealerops/finance"
	"dealerops/internal/timeutil"
	"dealerops/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// Meta is the report context shown in every email header and footer.
type Meta struct {
	Dealership string
	Brand      string
	Month      string
	SourceFile string
	Generated  time.Time
}

type emailHeader struct {
	Title      string
	Dealership string
	BrandLabel string
	MonthLabel string
	SourceFile string
	Generated  string
}

type advisorMetricRow struct {
	Label string
	Value float64
}

type advisorCategoryView struct {
	Name    string
	Metrics []advisorMetricRow
}

type advisorView struct {
	Name       string
	AdvisorID  string
	Categories []advisorCategoryView
}

type advisorPageView struct {
	emailHeader
	Advisors []advisorView
	Warnings report.Diagnostics
}

type techWeekRow struct {
	WeekStart    string
	Hours        report.Hours
	Productivity *float64
}

type techView struct {
	Name         string
	EmployeeID   string
	Weeks        []techWeekRow
	Total        report.Hours
	Productivity *float64
}

type techPageView struct {
	emailHeader
	Technicians []techView
	Warnings    report.Diagnostics
}

type statementRow struct {
	Label    string
	Value    decimal.Decimal
	HasValue bool
	Sub      bool
}

type statementDeptView struct {
	Name string
	Rows []statementRow
}

type statementPageView struct {
	emailHeader
	Departments []statementDeptView
}

// RenderAdvisorEmail renders the service advisor productivity report as a
// standalone HTML document. Advisors keep their report order; categories
// and metrics within an advisor sort alphabetically.
func RenderAdvisorEmail(productivity *report.ProductivityReport, meta Meta) (string, error) {
	view := advisorPageView{
		emailHeader: headerFor("Service Advisor Productivity", meta),
		Advisors:    make([]advisorView, 0, len(productivity.Advisors)),
		Warnings:    productivity.Diagnostics,
	}

	for _, advisor := range productivity.Advisors {
		out := advisorView{Name: advisor.Name, AdvisorID: advisor.AdvisorID}

		categories := make([]string, 0, len(advisor.Categories))
		for category := range advisor.Categories {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		for _, category := range categories {
			metrics := advisor.Categories[category]
			labels := make([]string, 0, len(metrics))
			for label := range metrics {
				labels = append(labels, label)
			}
			sort.Strings(labels)

			categoryView := advisorCategoryView{Name: metricLabel(category)}
			for _, label := range labels {
				categoryView.Metrics = append(categoryView.Metrics, advisorMetricRow{
					Label: label,
					Value: metrics[label],
				})
			}
			out.Categories = append(out.Categories, categoryView)
		}
		view.Advisors = append(view.Advisors, out)
	}

	return render("advisor.html", view)
}

// RenderTechHoursEmail renders the technician hours report with weekly
// rollups and a per-technician total.
func RenderTechHoursEmail(techHours *report.TechHoursReport, meta Meta) (string, error) {
	view := techPageView{
		emailHeader: headerFor("Technician Hours", meta),
		Technicians: make([]techView, 0, len(techHours.Technicians)),
		Warnings:    techHours.Diagnostics,
	}

	for i := range techHours.Technicians {
		tech := &techHours.Technicians[i]
		out := techView{Name: tech.Name, EmployeeID: tech.EmployeeID}

		weekly := tech.WeeklyTotals()
		weeks := make([]string, 0, len(weekly))
		for week := range weekly {
			weeks = append(weeks, week)
		}
		sort.Strings(weeks)

		for _, week := range weeks {
			hours := weekly[week]
			out.Weeks = append(out.Weeks, techWeekRow{
				WeekStart:    week,
				Hours:        hours,
				Productivity: hours.Productivity(),
			})
		}
		out.Total = tech.Total()
		out.Productivity = out.Total.Productivity()
		view.Technicians = append(view.Technicians, out)
	}

	return render("techhours.html", view)
}

// RenderStatementEmail renders the resolved financial statement grouped
// by department, with sub-metric components indented under their parent.
func RenderStatementEmail(statement *finance.Statement, meta Meta) (string, error) {
	if meta.Brand == "" {
		meta.Brand = statement.Brand
	}
	if meta.Month == "" {
		meta.Month = statement.Month
	}

	view := statementPageView{
		emailHeader: headerFor("Financial Statement", meta),
	}

	for _, name := range statement.DepartmentNames() {
		values := statement.Departments[name]
		deptView := statementDeptView{Name: name}

		metrics := make([]string, 0, len(values.Metrics))
		for metric := range values.Metrics {
			metrics = append(metrics, metric)
		}
		sort.Strings(metrics)

		for _, metric := range metrics {
			deptView.Rows = append(deptView.Rows, statementRow{
				Label:    metricLabel(metric),
				Value:    values.Metrics[metric],
				HasValue: true,
			})
			deptView.Rows = appendSubRows(deptView.Rows, values.SubMetrics[metric])
		}

		// Parents that only resolved components still show as a group.
		orphans := make([]string, 0)
		for parent := range values.SubMetrics {
			if _, ok := values.Metrics[parent]; !ok {
				orphans = append(orphans, parent)
			}
		}
		sort.Strings(orphans)
		for _, parent := range orphans {
			deptView.Rows = append(deptView.Rows, statementRow{Label: metricLabel(parent)})
			deptView.Rows = appendSubRows(deptView.Rows, values.SubMetrics[parent])
		}

		view.Departments = append(view.Departments, deptView)
	}

	return render("statement.html", view)
}

func appendSubRows(rows []statementRow, subs []finance.SubMetric) []statementRow {
	for _, sub := range subs {
		rows = append(rows, statementRow{
			Label:    sub.Name,
			Value:    sub.Value,
			HasValue: true,
			Sub:      true,
		})
	}
	return rows
}

func headerFor(title string, meta Meta) emailHeader {
	generated := meta.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	monthLabel := ""
	if strings.TrimSpace(meta.Month) != "" {
		monthLabel = timeutil.MonthLabel(meta.Month)
	}

	source := strings.TrimSpace(meta.SourceFile)
	if source != "" {
		source = filepath.Base(source)
	}

	return emailHeader{
		Title:      title,
		Dealership: strings.TrimSpace(meta.Dealership),
		BrandLabel: metricLabel(strings.TrimSpace(meta.Brand)),
		MonthLabel: monthLabel,
		SourceFile: source,
		Generated:  generated.Format("Jan 2, 2006 15:04"),
	}
}

func render(pageTemplate string, data any) (string, error) {
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"fmtNumber": func(value float64) string {
			return strconv.FormatFloat(value, 'f', 2, 64)
		},
		"fmtAmount": func(value decimal.Decimal) string {
			return groupThousands(value.StringFixed(2))
		},
		"fmtPercent": func(value *float64) string {
			if value == nil {
				return "n/a"
			}
			return fmt.Sprintf("%.1f%%", *value*100)
		},
	}).ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return "", fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return buf.String(), nil
}

// metricLabel turns a snake_case metric key into a display label, for
// example "total_sales" into "Total Sales".
func metricLabel(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	if len(intPart) > 3 {
		var grouped strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			grouped.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if grouped.Len() > 0 {
				grouped.WriteByte(',')
			}
			grouped.WriteString(intPart[i : i+3])
		}
		intPart = grouped.String()
	}

	if fracPart == "" {
		return sign + intPart
	}
	return sign + intPart + "." + fracPart
}
