package email

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dealerops/finance"
	"dealerops/report"
)

func mustContain(t *testing.T, html, want string) {
	t.Helper()
	if !strings.Contains(html, want) {
		t.Fatalf("expected rendered email to contain %q", want)
	}
}

func mustOrder(t *testing.T, html, first, second string) {
	t.Helper()
	left := strings.Index(html, first)
	right := strings.Index(html, second)
	if left < 0 || right < 0 {
		t.Fatalf("expected both %q and %q in rendered email", first, second)
	}
	if left > right {
		t.Fatalf("expected %q before %q", first, second)
	}
}

func TestRenderAdvisorEmail_ListsAdvisorsAndMetrics(t *testing.T) {
	t.Parallel()

	productivity := &report.ProductivityReport{
		Advisors: []report.AdvisorData{
			{
				Name:      "JOHNSON, MIKE",
				AdvisorID: "4521",
				Categories: map[string]map[string]float64{
					"customer": {
						"Labor Sales": 12345.678,
						"Hours Sold":  88.5,
					},
				},
			},
			{
				Name: "SMITH, SARA",
				Categories: map[string]map[string]float64{
					"warranty": {"Labor Sales": 980},
				},
			},
		},
	}

	html, err := RenderAdvisorEmail(productivity, Meta{
		Dealership: "Henley Automotive Group",
		Brand:      "nissan",
		Month:      "2026-02",
		SourceFile: "/tmp/uploads/advisor-feb.xlsx",
		Generated:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render advisor email: %v", err)
	}

	mustContain(t, html, "Service Advisor Productivity")
	mustContain(t, html, "Henley Automotive Group")
	mustContain(t, html, "Nissan")
	mustContain(t, html, "February 2026")
	mustContain(t, html, "JOHNSON, MIKE")
	mustContain(t, html, "#4521")
	mustContain(t, html, "Labor Sales")
	mustContain(t, html, "12345.68")
	mustContain(t, html, "88.50")
	mustContain(t, html, "advisor-feb.xlsx")
	mustContain(t, html, "Mar 2, 2026 09:30")

	mustOrder(t, html, "JOHNSON, MIKE", "SMITH, SARA")
	mustOrder(t, html, "Hours Sold", "Labor Sales")
}

func TestRenderAdvisorEmail_IncludesWarnings(t *testing.T) {
	t.Parallel()

	productivity := &report.ProductivityReport{}
	productivity.Diagnostics.Add("Sheet1", "row 12", "unrecognized pay type %q", "SPIFF")

	html, err := RenderAdvisorEmail(productivity, Meta{})
	if err != nil {
		t.Fatalf("render advisor email: %v", err)
	}

	mustContain(t, html, "Warnings")
	mustContain(t, html, "row 12")
	mustContain(t, html, "unrecognized pay type")
	mustContain(t, html, "No advisors found")
}

func TestRenderTechHoursEmail_RollsUpWeeks(t *testing.T) {
	t.Parallel()

	techHours := &report.TechHoursReport{
		Technicians: []report.TechnicianData{
			{
				Name:       "NGUYEN, PAUL",
				EmployeeID: "7788",
				Days: map[string]report.Hours{
					"2026-02-02": {Sold: 8, Clocked: 8},
					"2026-02-03": {Sold: 6, Clocked: 8},
					"2026-02-09": {Sold: 4, Clocked: 8},
				},
			},
		},
	}

	html, err := RenderTechHoursEmail(techHours, Meta{Month: "2026-02"})
	if err != nil {
		t.Fatalf("render tech hours email: %v", err)
	}

	mustContain(t, html, "Technician Hours")
	mustContain(t, html, "NGUYEN, PAUL")
	mustContain(t, html, "#7788")
	mustContain(t, html, "2026-02-02")
	mustContain(t, html, "14.00")
	mustContain(t, html, "16.00")
	mustContain(t, html, "87.5%")
	mustContain(t, html, "50.0%")
	mustContain(t, html, "75.0%")

	mustOrder(t, html, "2026-02-02", "2026-02-09")
}

func TestRenderStatementEmail_GroupsSubMetrics(t *testing.T) {
	t.Parallel()

	statement := finance.NewStatement("nissan", "2026-02")
	newVehicle := statement.Department("New Vehicle")
	newVehicle.Metrics["total_sales"] = decimal.RequireFromString("125000.5")
	newVehicle.AddSubMetric("total_sales", finance.SubMetric{Name: "Retail", Order: 1, Value: decimal.NewFromInt(90000)})
	newVehicle.AddSubMetric("total_sales", finance.SubMetric{Name: "Fleet", Order: 2, Value: decimal.RequireFromString("35000.5")})

	usedVehicle := statement.Department("Used Vehicle")
	usedVehicle.Metrics["gross_profit"] = decimal.NewFromInt(-4200)

	service := statement.Department("Service")
	service.AddSubMetric("labor_revenue", finance.SubMetric{Name: "Customer Pay", Order: 1, Value: decimal.NewFromInt(61000)})

	html, err := RenderStatementEmail(statement, Meta{Dealership: "Henley Automotive Group"})
	if err != nil {
		t.Fatalf("render statement email: %v", err)
	}

	mustContain(t, html, "Financial Statement")
	mustContain(t, html, "February 2026")
	mustContain(t, html, "Total Sales")
	mustContain(t, html, "125,000.50")
	mustContain(t, html, "Retail")
	mustContain(t, html, "90,000.00")
	mustContain(t, html, "35,000.50")
	mustContain(t, html, "Gross Profit")
	mustContain(t, html, "-4,200.00")
	mustContain(t, html, "Labor Revenue")
	mustContain(t, html, "Customer Pay")

	mustOrder(t, html, "New Vehicle", "Service")
	mustOrder(t, html, "Total Sales", "Retail")
	mustOrder(t, html, "Retail", "Fleet")
}

func TestGroupThousands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"999.99", "999.99"},
		{"1000", "1,000"},
		{"125000.50", "125,000.50"},
		{"-4200.00", "-4,200.00"},
		{"1234567.00", "1,234,567.00"},
	}
	for _, tc := range cases {
		if got := groupThousands(tc.in); got != tc.want {
			t.Fatalf("groupThousands(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
