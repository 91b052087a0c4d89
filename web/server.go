// Package web serves a localhost-only single-user UI; it intentionally has no
// auth/CSRF protection in this mode.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dealerops/config"
	"dealerops/email"
	"dealerops/importer"
	"dealerops/internal/timeutil"
	"dealerops/mailer"
	"dealerops/mapping"
	"dealerops/report"
	"dealerops/storage"
	"dealerops/workbook"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	store *storage.SQLiteStore
	mail  mailer.Client
	cfg   config.Config
	log   *zap.Logger
	mux   *http.ServeMux
}

type dashboardView struct {
	Title    string
	Months   []string
	Brands   []string
	Batches  []storage.ImportBatch
	Mappings int
}

type entriesPageView struct {
	Title      string
	Month      string
	MonthLabel string
	Brand      string
	Groups     []DepartmentGroup
}

type changedMetricJSON struct {
	Department string `json:"department"`
	Metric     string `json:"metric"`
	Previous   string `json:"previous"`
	Current    string `json:"current"`
}

type importResponse struct {
	BatchID        string              `json:"batchId,omitempty"`
	Brand          string              `json:"brand"`
	Month          string              `json:"month"`
	DryRun         bool                `json:"dryRun"`
	Departments    int                 `json:"departments"`
	Metrics        int                 `json:"metrics"`
	SubMetrics     int                 `json:"subMetrics"`
	EntriesWritten int                 `json:"entriesWritten"`
	New            int                 `json:"new"`
	Changed        int                 `json:"changed"`
	Unchanged      int                 `json:"unchanged"`
	Changes        []changedMetricJSON `json:"changes"`
	Warnings       report.Diagnostics  `json:"warnings,omitempty"`
}

type emailResponse struct {
	ID       string   `json:"id"`
	Accepted int      `json:"accepted"`
	To       []string `json:"to"`
}

var errMailUpstream = errors.New("mail upstream error")

// NewServer wires the ingestion endpoints and the read-only pages. The
// mail client may be nil when delivery is not configured; the email
// endpoint then still previews but rejects send requests.
func NewServer(store *storage.SQLiteStore, mail mailer.Client, cfg config.Config, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	server := &Server{
		store: store,
		mail:  mail,
		cfg:   cfg,
		log:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", server.handleDashboard)
	mux.HandleFunc("GET /entries/{month}", server.handleEntriesPage)
	mux.HandleFunc("POST /api/reports/productivity", server.handleAPIReportProductivity)
	mux.HandleFunc("POST /api/reports/techhours", server.handleAPIReportTechHours)
	mux.HandleFunc("POST /api/reports/{kind}/email", server.handleAPIReportEmail)
	mux.HandleFunc("POST /api/financial/import", server.handleAPIFinancialImport)
	mux.HandleFunc("GET /api/mappings", server.handleAPIMappingsList)
	mux.HandleFunc("POST /api/mappings", server.handleAPIMappingsCreate)
	mux.HandleFunc("DELETE /api/mappings/{id}", server.handleAPIMappingsDelete)
	mux.HandleFunc("GET /api/entries/{month}", server.handleAPIEntries)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	months, err := s.store.ListMonths()
	if err != nil {
		http.Error(w, fmt.Sprintf("list months: %v", err), http.StatusInternalServerError)
		return
	}
	brands, err := s.store.ListBrands()
	if err != nil {
		http.Error(w, fmt.Sprintf("list brands: %v", err), http.StatusInternalServerError)
		return
	}
	batches, err := s.store.ListImportBatches(10)
	if err != nil {
		http.Error(w, fmt.Sprintf("list import batches: %v", err), http.StatusInternalServerError)
		return
	}
	mappings, err := s.store.ListCellMappings("")
	if err != nil {
		http.Error(w, fmt.Sprintf("list cell mappings: %v", err), http.StatusInternalServerError)
		return
	}

	view := dashboardView{
		Title:    "dealerops",
		Months:   months,
		Brands:   brands,
		Batches:  batches,
		Mappings: len(mappings),
	}
	if err := renderTemplate(w, "dashboard.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleEntriesPage(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.PathValue("month"))
	if _, err := timeutil.ParseMonth(month); err != nil {
		http.Error(w, "invalid month format (expected YYYY-MM)", http.StatusBadRequest)
		return
	}
	brand := strings.TrimSpace(r.URL.Query().Get("brand"))

	entries, err := s.store.ListMonthEntries(month, brand)
	if err != nil {
		http.Error(w, fmt.Sprintf("list month entries: %v", err), http.StatusInternalServerError)
		return
	}

	view := entriesPageView{
		Title:      "dealerops - " + month,
		Month:      month,
		MonthLabel: timeutil.MonthLabel(month),
		Brand:      brand,
		Groups:     BuildEntryGroups(entries),
	}
	if err := renderTemplate(w, "entries.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAPIReportProductivity(w http.ResponseWriter, r *http.Request) {
	wb, _, ok := s.loadUploadedWorkbook(w, r)
	if !ok {
		return
	}

	parsed, err := report.ParseProductivity(wb, s.cfg.ProductivitySpec())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func (s *Server) handleAPIReportTechHours(w http.ResponseWriter, r *http.Request) {
	wb, _, ok := s.loadUploadedWorkbook(w, r)
	if !ok {
		return
	}

	parsed, err := report.ParseTechHours(wb, s.cfg.TechHoursSpec())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func (s *Server) handleAPIReportEmail(w http.ResponseWriter, r *http.Request) {
	kind := strings.TrimSpace(r.PathValue("kind"))
	if kind != "productivity" && kind != "techhours" {
		http.Error(w, fmt.Sprintf("unknown report kind %q", kind), http.StatusBadRequest)
		return
	}

	wb, filename, ok := s.loadUploadedWorkbook(w, r)
	if !ok {
		return
	}

	month := strings.TrimSpace(r.FormValue("month"))
	if month != "" {
		if _, err := timeutil.ParseMonth(month); err != nil {
			http.Error(w, "invalid month format (expected YYYY-MM)", http.StatusBadRequest)
			return
		}
	}

	meta := email.Meta{
		Dealership: strings.TrimSpace(r.FormValue("dealership")),
		Month:      month,
		SourceFile: filename,
	}

	var html, subject string
	switch kind {
	case "productivity":
		parsed, err := report.ParseProductivity(wb, s.cfg.ProductivitySpec())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		html, err = email.RenderAdvisorEmail(parsed, meta)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		subject = "Service advisor productivity"
	case "techhours":
		parsed, err := report.ParseTechHours(wb, s.cfg.TechHoursSpec())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		html, err = email.RenderTechHoursEmail(parsed, meta)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		subject = "Technician hours"
	}

	// Without send=1 the rendered HTML is returned as a preview, which
	// works with no mail configuration at all.
	if !parseFlag(r.FormValue("send")) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)
		return
	}

	if s.mail == nil {
		http.Error(w, "email delivery is not configured", http.StatusBadRequest)
		return
	}
	recipients := splitRecipients(r.FormValue("to"))
	if len(recipients) == 0 {
		http.Error(w, "at least one recipient is required", http.StatusBadRequest)
		return
	}
	if month != "" {
		subject = fmt.Sprintf("%s for %s", subject, timeutil.MonthLabel(month))
	}

	receipt, err := s.mail.Send(r.Context(), mailer.Message{To: recipients, Subject: subject, HTML: html})
	if err != nil {
		err = wrapMailError(err)
		s.log.Warn("report email failed", zap.String("kind", kind), zap.Error(err))
		http.Error(w, err.Error(), mailErrorStatus(err))
		return
	}

	s.log.Info("report email sent",
		zap.String("kind", kind),
		zap.Strings("to", recipients),
		zap.String("message_id", receipt.ID))
	writeJSON(w, http.StatusOK, emailResponse{ID: receipt.ID, Accepted: receipt.Accepted, To: recipients})
}

func (s *Server) handleAPIFinancialImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	brand := strings.TrimSpace(r.FormValue("brand"))
	if brand == "" {
		http.Error(w, "brand is required", http.StatusBadRequest)
		return
	}
	month := strings.TrimSpace(r.FormValue("month"))
	if _, err := timeutil.ParseMonth(month); err != nil {
		http.Error(w, "invalid month format (expected YYYY-MM)", http.StatusBadRequest)
		return
	}
	dryRun := parseFlag(r.FormValue("dry_run"))

	tmpPath, cleanup, err := saveUpload(file, header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer cleanup()

	convertYTD := false
	if policy, ok := s.cfg.BrandPolicy(brand); ok {
		convertYTD = policy.YTDSubMetrics
	}

	result, err := importer.Run(s.store, tmpPath, importer.RunOptions{
		Brand:      brand,
		Month:      month,
		DryRun:     dryRun,
		ConvertYTD: convertYTD,
		Log:        s.log,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, importer.ErrStorage) {
			status = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, importResponseFrom(result))
}

func (s *Server) handleAPIMappingsList(w http.ResponseWriter, r *http.Request) {
	brand := strings.TrimSpace(r.URL.Query().Get("brand"))
	mappings, err := s.store.ListCellMappings(brand)
	if err != nil {
		http.Error(w, fmt.Sprintf("list cell mappings: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, mappings)
}

func (s *Server) handleAPIMappingsCreate(w http.ResponseWriter, r *http.Request) {
	var body mapping.CellMapping
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body.ID = 0
	if err := body.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.store.InsertCellMapping(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("insert cell mapping: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleAPIMappingsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid mapping id", http.StatusBadRequest)
		return
	}

	deleted, err := s.store.DeleteCellMapping(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("delete cell mapping: %v", err), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "mapping not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIEntries(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.PathValue("month"))
	if _, err := timeutil.ParseMonth(month); err != nil {
		http.Error(w, "invalid month format (expected YYYY-MM)", http.StatusBadRequest)
		return
	}
	brand := strings.TrimSpace(r.URL.Query().Get("brand"))

	entries, err := s.store.ListMonthEntries(month, brand)
	if err != nil {
		http.Error(w, fmt.Sprintf("list month entries: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, BuildEntryGroups(entries))
}

// loadUploadedWorkbook pulls the multipart upload into a temp file and
// decodes it. The temp file keeps the upload's extension because the
// decoder picks its format from it. Errors are already written to the
// response when ok is false.
func (s *Server) loadUploadedWorkbook(w http.ResponseWriter, r *http.Request) (*workbook.Workbook, string, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	tmpPath, cleanup, err := saveUpload(file, header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, "", false
	}
	defer cleanup()

	wb, err := workbook.Load(tmpPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	return wb, header.Filename, true
}

func saveUpload(file io.Reader, filename string) (string, func(), error) {
	tmp, err := os.CreateTemp("", tempUploadPattern(filename))
	if err != nil {
		return "", nil, fmt.Errorf("create temp upload: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close upload temp file: %w", err)
	}
	return tmpPath, cleanup, nil
}

func importResponseFrom(result *importer.Result) importResponse {
	resp := importResponse{
		BatchID:        result.BatchID,
		Brand:          result.Brand,
		Month:          result.Month,
		DryRun:         result.DryRun,
		Departments:    result.Departments,
		Metrics:        result.Metrics,
		SubMetrics:     result.SubMetrics,
		EntriesWritten: result.EntriesWritten,
		New:            result.New,
		Changed:        result.Changed,
		Unchanged:      result.Unchanged,
		Changes:        make([]changedMetricJSON, 0, len(result.Changes)),
		Warnings:       result.Diagnostics,
	}
	if result.DryRun {
		resp.BatchID = ""
	}
	for _, change := range result.Changes {
		resp.Changes = append(resp.Changes, changedMetricJSON{
			Department: change.Department,
			Metric:     change.Metric,
			Previous:   change.Previous.String(),
			Current:    change.Current.String(),
		})
	}
	return resp
}

func renderTemplate(w http.ResponseWriter, pageTemplate string, data any) error {
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"fmtAmount": func(value decimal.Decimal) string {
			return value.StringFixed(2)
		},
	}).ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}

func splitRecipients(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseFlag(value string) bool {
	value = strings.TrimSpace(value)
	return value == "1" || strings.EqualFold(value, "true") || strings.EqualFold(value, "on")
}

func parsePositiveInt64(value string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("value must be > 0")
	}
	return parsed, nil
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func mailErrorStatus(err error) int {
	if errors.Is(err, errMailUpstream) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func wrapMailError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errMailUpstream, err)
}

func tempUploadPattern(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." {
		return "upload-*"
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "upload"
	}
	if ext == "" {
		return stem + "-*"
	}
	return stem + "-*" + ext
}
