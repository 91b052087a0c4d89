package mapping

import (
	"testing"

	"github.com/shopspring/decimal"

	"dealerops/finance"
)

func TestVerifyStatement(t *testing.T) {
	t.Parallel()

	statement := finance.NewStatement("nissan", "2026-02")
	dept := statement.Department("Service")
	dept.Metrics["total_sales"] = decimal.NewFromInt(100)
	dept.AddSubMetric("total_sales", finance.SubMetric{Name: "A", Order: 1, Value: decimal.NewFromInt(60)})
	dept.AddSubMetric("total_sales", finance.SubMetric{Name: "B", Order: 2, Value: decimal.NewFromInt(30)})

	// No plain value for this parent; it cannot be checked.
	dept.AddSubMetric("unchecked", finance.SubMetric{Name: "C", Order: 1, Value: decimal.NewFromInt(5)})

	tolerance := decimal.RequireFromString("0.01")
	findings := VerifyStatement(statement, tolerance)
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %+v", findings)
	}
	finding := findings[0]
	if finding.Department != "Service" || finding.Metric != "total_sales" {
		t.Fatalf("unexpected finding: %+v", finding)
	}
	if !finding.Parent.Equal(decimal.NewFromInt(100)) || !finding.SubSum.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("unexpected amounts: %+v", finding)
	}

	// Within a wide tolerance nothing is flagged.
	if findings := VerifyStatement(statement, decimal.NewFromInt(15)); len(findings) != 0 {
		t.Fatalf("expected no findings with tolerance 15, got %+v", findings)
	}

	// Fix the gap and the statement verifies clean.
	dept.AddSubMetric("total_sales", finance.SubMetric{Name: "D", Order: 3, Value: decimal.NewFromInt(10)})
	if findings := VerifyStatement(statement, tolerance); len(findings) != 0 {
		t.Fatalf("expected a consistent statement, got %+v", findings)
	}
}
