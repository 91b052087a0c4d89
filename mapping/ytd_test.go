package mapping

import (
	"testing"

	"github.com/shopspring/decimal"

	"dealerops/finance"
)

func ytdStatement(month string, value int64) *finance.Statement {
	statement := finance.NewStatement("nissan", month)
	dept := statement.Department("Service")
	dept.Metrics["total_sales"] = decimal.NewFromInt(value)
	dept.AddSubMetric("total_sales", finance.SubMetric{
		Name:  "New Vehicles",
		Order: 1,
		Value: decimal.NewFromInt(value),
	})
	return statement
}

func TestConvertSubMetricsYTD(t *testing.T) {
	t.Parallel()

	statement := ytdStatement("2026-02", 5000)
	prior := Snapshots{}
	prior.put("Service", SnapshotKey("total_sales", "New Vehicles"), decimal.NewFromInt(3000))

	current := ConvertSubMetricsYTD(statement, prior)

	subs := statement.Departments["Service"].SubMetrics["total_sales"]
	if !subs[0].Value.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("February monthly value = %s, want 2000", subs[0].Value)
	}
	// Plain metrics are untouched; only sub-metrics are stored YTD.
	if got := statement.Departments["Service"].Metrics["total_sales"]; !got.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("parent metric changed to %s", got)
	}

	snapshot, ok := current.get("Service", SnapshotKey("total_sales", "New Vehicles"))
	if !ok || !snapshot.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("current snapshot = %s (ok=%v), want the original YTD 5000", snapshot, ok)
	}
}

func TestConvertSubMetricsYTDJanuary(t *testing.T) {
	t.Parallel()

	statement := ytdStatement("2026-01", 3000)
	prior := Snapshots{}
	prior.put("Service", SnapshotKey("total_sales", "New Vehicles"), decimal.NewFromInt(90000))

	current := ConvertSubMetricsYTD(statement, prior)

	subs := statement.Departments["Service"].SubMetrics["total_sales"]
	if !subs[0].Value.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("January must pass through unchanged, got %s", subs[0].Value)
	}
	if snapshot, _ := current.get("Service", SnapshotKey("total_sales", "New Vehicles")); !snapshot.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("January snapshot = %s, want 3000", snapshot)
	}
}

func TestConvertSubMetricsYTDWithoutPrior(t *testing.T) {
	t.Parallel()

	statement := ytdStatement("2026-03", 4200)

	ConvertSubMetricsYTD(statement, Snapshots{})

	subs := statement.Departments["Service"].SubMetrics["total_sales"]
	if !subs[0].Value.Equal(decimal.NewFromInt(4200)) {
		t.Fatalf("first ingested month keeps the YTD value, got %s", subs[0].Value)
	}
}
