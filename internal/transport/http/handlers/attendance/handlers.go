package attendancehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"punchclock/internal/domain/attendance"
	"punchclock/internal/domain/audit"
	"punchclock/internal/domain/auth"
	"punchclock/internal/platform/jobs"
	"punchclock/internal/platform/metrics"
	"punchclock/internal/platform/sheets"
	"punchclock/internal/transport/http/api"
	"punchclock/internal/transport/http/middleware"
	"punchclock/internal/transport/http/shared"
)

const (
	maxUploadMemoryBytes = 8 * 1024 * 1024
	idempotencyApprove   = "attendance.approve"
)

var errInvalidPayload = errors.New("invalid request payload")

var editableShifts = []string{
	string(attendance.ShiftMorning),
	string(attendance.ShiftEvening),
	string(attendance.ShiftNight),
	string(attendance.ShiftCanteen),
}

type Service interface {
	Import(ctx context.Context, source string, rowCount int, result attendance.Result, createdBy string) (attendance.ImportSummary, error)
	ListDays(ctx context.Context, filter attendance.DayFilter, limit, offset int) ([]attendance.StoredDay, int, error)
	EditDay(ctx context.Context, id string, edit attendance.ManualEdit) (attendance.StoredDay, attendance.StoredDay, error)
	PenalizeDay(ctx context.Context, id string, minutes int) (attendance.StoredDay, attendance.StoredDay, error)
	Approve(ctx context.Context, ids []string, approvedBy string) (int, error)
	EmployeeRecords(ctx context.Context, filter attendance.DayFilter) ([]attendance.EmployeeRecord, error)
}

type AuditLog interface {
	Record(ctx context.Context, entry audit.Entry) error
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type JobRunner interface {
	Enqueue(ctx context.Context, jobType, requestedBy string, run jobs.Func) (string, error)
	RunNow(ctx context.Context, jobType, requestedBy string, run jobs.Func) (any, error)
	GetRun(ctx context.Context, id string) (jobs.Run, error)
}

type IdempotencyStore interface {
	Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service     Service
	Engine      *attendance.Engine
	Jobs        JobRunner
	Audit       AuditLog
	Idempotency IdempotencyStore
	Metrics     *metrics.Collector
	Perms       middleware.PermissionStore
}

func NewHandler(service Service, engine *attendance.Engine, runner JobRunner, auditLog AuditLog, perms middleware.PermissionStore) *Handler {
	if engine == nil {
		engine = attendance.NewEngine()
	}
	return &Handler{Service: service, Engine: engine, Jobs: runner, Audit: auditLog, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceImport, h.Perms)).Post("/imports", h.handleImport)
		r.With(middleware.RequirePermission(auth.PermAttendanceImport, h.Perms)).Post("/preview", h.handlePreview)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/days", h.handleListDays)
		r.With(middleware.RequirePermission(auth.PermAttendanceEdit, h.Perms)).Put("/days/{dayID}", h.handleEditDay)
		r.With(middleware.RequirePermission(auth.PermAttendanceEdit, h.Perms)).Post("/days/{dayID}/penalty", h.handlePenalizeDay)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/days/{dayID}/history", h.handleDayHistory)
		r.With(middleware.RequirePermission(auth.PermAttendanceApprove, h.Perms)).Post("/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/export.xlsx", h.handleExportWorkbook)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/employees/{employeeNumber}/timesheet.pdf", h.handleTimesheet)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/jobs/{jobID}", h.handleGetJob)
	})
}

type importPayload struct {
	Source string              `json:"source"`
	Rows   []attendance.RawRow `json:"rows"`
}

type editPayload struct {
	CheckIn        string `json:"checkIn"`
	CheckOut       string `json:"checkOut"`
	ShiftType      string `json:"shiftType"`
	PenaltyMinutes int    `json:"penaltyMinutes"`
	Note           string `json:"note"`
}

type penaltyPayload struct {
	PenaltyMinutes *int `json:"penaltyMinutes"`
}

type approvePayload struct {
	DayIDs []string `json:"dayIds"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	source, rows, err := decodeImport(r)
	if err != nil {
		h.failImport(w, r, err)
		return
	}

	work := h.importJob(source, rows, auditEntry(r, user.UserID))
	if r.URL.Query().Get("async") == "true" {
		runID, err := h.Jobs.Enqueue(r.Context(), jobs.JobAttendanceImport, user.UserID, work)
		if err != nil {
			h.failImport(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, api.Envelope{
			Success:   true,
			Data:      map[string]string{"jobId": runID, "status": jobs.StatusQueued},
			RequestID: middleware.GetRequestID(r.Context()),
		})
		return
	}

	summary, err := h.Jobs.RunNow(r.Context(), jobs.JobAttendanceImport, user.UserID, work)
	if err != nil {
		h.failImport(w, r, err)
		return
	}
	api.Created(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) importJob(source string, rows []attendance.RawRow, entry audit.Entry) jobs.Func {
	return func(ctx context.Context) (any, error) {
		result := h.Engine.Process(rows)
		h.recordReconciliation(len(rows), result)

		summary, err := h.Service.Import(ctx, source, len(rows), result, entry.ActorID)
		if err != nil {
			return nil, err
		}

		entry.Action = audit.ActionImport
		entry.EntityType = audit.EntityBatch
		entry.EntityID = summary.BatchID
		entry.After = map[string]any{
			"source":    source,
			"rowCount":  summary.RowCount,
			"dayCount":  summary.DayCount,
			"rowErrors": len(summary.RowErrors),
		}
		h.record(ctx, entry)
		return summary, nil
	}
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	_, rows, err := decodeImport(r)
	if err != nil {
		h.failImport(w, r, err)
		return
	}
	result := h.Engine.Process(rows)
	h.recordReconciliation(len(rows), result)
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDays(w http.ResponseWriter, r *http.Request) {
	filter, ok := dayFilterFromQuery(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 500)
	days, total, err := h.Service.ListDays(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance days", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, days, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEditDay(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	dayID, ok := pathID(w, r, "dayID")
	if !ok {
		return
	}

	var payload editPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	checkIn := parseStamp(v, "checkIn", payload.CheckIn)
	checkOut := parseStamp(v, "checkOut", payload.CheckOut)
	v.Enum("shiftType", payload.ShiftType, editableShifts, "must be one of morning, evening, night or canteen")
	if payload.PenaltyMinutes < 0 {
		v.Add("penaltyMinutes", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	before, after, err := h.Service.EditDay(r.Context(), dayID, attendance.ManualEdit{
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		ShiftType:      attendance.ShiftType(strings.ToLower(strings.TrimSpace(payload.ShiftType))),
		PenaltyMinutes: payload.PenaltyMinutes,
		Note:           strings.TrimSpace(payload.Note),
	})
	if err != nil {
		failDayMutation(w, r, err, "attendance_edit_failed", "failed to edit attendance day")
		return
	}

	entry := auditEntry(r, user.UserID)
	entry.Action = audit.ActionEditDay
	entry.EntityType = audit.EntityDay
	entry.EntityID = dayID
	entry.Before = before.Record
	entry.After = after.Record
	h.record(r.Context(), entry)

	api.Success(w, after, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePenalizeDay(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	dayID, ok := pathID(w, r, "dayID")
	if !ok {
		return
	}

	var payload penaltyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	if payload.PenaltyMinutes == nil {
		v.Add("penaltyMinutes", "is required")
	} else if *payload.PenaltyMinutes < 0 {
		v.Add("penaltyMinutes", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	before, after, err := h.Service.PenalizeDay(r.Context(), dayID, *payload.PenaltyMinutes)
	if err != nil {
		failDayMutation(w, r, err, "attendance_penalty_failed", "failed to apply penalty")
		return
	}

	entry := auditEntry(r, user.UserID)
	entry.Action = audit.ActionPenalizeDay
	entry.EntityType = audit.EntityDay
	entry.EntityID = dayID
	entry.Before = before.Record
	entry.After = after.Record
	h.record(r.Context(), entry)

	api.Success(w, after, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDayHistory(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r, "dayID")
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	events, err := h.Audit.List(r.Context(), audit.Filter{EntityType: audit.EntityDay, EntityID: dayID}, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_history_failed", "failed to load day history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unable to read request body", middleware.GetRequestID(r.Context()))
		return
	}
	var payload approvePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if len(payload.DayIDs) == 0 {
		v.Add("dayIds", "must contain at least one day id")
	}
	for _, id := range payload.DayIDs {
		if _, err := uuid.Parse(id); err != nil {
			v.Add("dayIds", "must contain valid day ids")
			break
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, idempotencyApprove, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Success(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	approved, err := h.Service.Approve(r.Context(), payload.DayIDs, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_approve_failed", "failed to approve attendance days", middleware.GetRequestID(r.Context()))
		return
	}

	for _, id := range payload.DayIDs {
		entry := auditEntry(r, user.UserID)
		entry.Action = audit.ActionApprove
		entry.EntityType = audit.EntityDay
		entry.EntityID = id
		h.record(r.Context(), entry)
	}

	response := map[string]int{"requested": len(payload.DayIDs), "approved": approved}
	if idempotencyKey != "" && h.Idempotency != nil {
		raw, _ := json.Marshal(response)
		if err := h.Idempotency.Save(r.Context(), user.UserID, idempotencyApprove, idempotencyKey, requestHash, raw); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	api.Success(w, response, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	filter, ok := dayFilterFromQuery(w, r)
	if !ok {
		return
	}
	employees, err := h.Service.EmployeeRecords(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to load attendance days", middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	if err := sheets.WriteWorkbook(&buf, employees); err != nil {
		slog.Error("attendance workbook export failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build workbook", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=attendance.xlsx")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("attendance workbook write failed", "err", err)
	}
}

func (h *Handler) handleTimesheet(w http.ResponseWriter, r *http.Request) {
	filter, ok := dayFilterFromQuery(w, r)
	if !ok {
		return
	}
	filter.EmployeeNumber = strings.TrimSpace(chi.URLParam(r, "employeeNumber"))

	employees, err := h.Service.EmployeeRecords(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "failed to load attendance days", middleware.GetRequestID(r.Context()))
		return
	}
	if len(employees) == 0 {
		api.Fail(w, http.StatusNotFound, "not_found", "no attendance days for employee", middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	if err := attendance.WriteTimesheetPDF(&buf, employees[0]); err != nil {
		slog.Error("timesheet render failed", "employeeNumber", filter.EmployeeNumber, "err", err)
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "failed to render timesheet", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=timesheet-%s.pdf", filter.EmployeeNumber))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("timesheet write failed", "err", err)
	}
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathID(w, r, "jobID")
	if !ok {
		return
	}
	run, err := h.Jobs.GetRun(r.Context(), jobID)
	if errors.Is(err, jobs.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_lookup_failed", "failed to load job run", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func decodeImport(r *http.Request) (string, []attendance.RawRow, error) {
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemoryBytes); err != nil {
			return "", nil, fmt.Errorf("%w: %w", errInvalidPayload, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("%w: missing file field", errInvalidPayload)
		}
		defer file.Close()

		table, err := sheets.ReadTable(file, header.Filename)
		if err != nil {
			return "", nil, err
		}
		rows, err := attendance.RowsFromTable(table)
		if err != nil {
			return "", nil, err
		}
		return header.Filename, rows, nil
	}

	var payload importPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return "", nil, fmt.Errorf("%w: %w", errInvalidPayload, err)
	}
	if len(payload.Rows) == 0 {
		return "", nil, attendance.ErrEmptyImport
	}
	source := strings.TrimSpace(payload.Source)
	if source == "" {
		source = "api"
	}
	return source, payload.Rows, nil
}

func (h *Handler) failImport(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	var shapeErr *attendance.FileShapeError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &shapeErr):
		if h.Metrics != nil {
			h.Metrics.RecordFileShapeReject()
		}
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "file_shape", shapeErr.Error(), map[string]any{"columns": shapeErr.Columns}, reqID)
	case errors.As(err, &tooLarge):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "upload exceeds the size limit", reqID)
	case errors.Is(err, attendance.ErrEmptyImport):
		api.Fail(w, http.StatusBadRequest, "empty_import", err.Error(), reqID)
	case errors.Is(err, sheets.ErrUnsupportedFormat), errors.Is(err, sheets.ErrNoWorksheet), errors.Is(err, sheets.ErrEmptyWorksheet):
		api.Fail(w, http.StatusBadRequest, "invalid_file", err.Error(), reqID)
	case errors.Is(err, errInvalidPayload):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
	case errors.Is(err, jobs.ErrQueueFull):
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "import queue is full, retry later", reqID)
	default:
		slog.Error("attendance import failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to import attendance", reqID)
	}
}

func failDayMutation(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, attendance.ErrDayNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "attendance day not found", reqID)
	case errors.Is(err, attendance.ErrAlreadyApproved):
		api.Fail(w, http.StatusConflict, "already_approved", err.Error(), reqID)
	case errors.Is(err, attendance.ErrInvalidTimeRange), errors.Is(err, attendance.ErrInvalidShiftType), errors.Is(err, attendance.ErrInvalidPenalty):
		api.Fail(w, http.StatusBadRequest, "invalid_edit", err.Error(), reqID)
	default:
		slog.Error("attendance day mutation failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}

func dayFilterFromQuery(w http.ResponseWriter, r *http.Request) (attendance.DayFilter, bool) {
	query := r.URL.Query()
	filter := attendance.DayFilter{EmployeeNumber: strings.TrimSpace(query.Get("employeeNumber"))}
	v := shared.NewValidator()
	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		filter.From, _ = v.Date("from", raw)
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		filter.To, _ = v.Date("to", raw)
	}
	v.DateOrder("from", filter.From, "to", filter.To)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return attendance.DayFilter{}, false
	}
	return filter, true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if _, err := uuid.Parse(raw); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", param+" must be a valid id", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return raw, true
}

func parseStamp(v *shared.Validator, field, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		v.Add(field, "is required")
		return time.Time{}
	}
	parsed, err := attendance.ParseTimestamp(raw)
	if err != nil {
		v.Add(field, "must be a date and time such as 2025-03-03 09:00")
		return time.Time{}
	}
	return parsed
}

func auditEntry(r *http.Request, actorID string) audit.Entry {
	return audit.Entry{
		ActorID:   actorID,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
	}
}

func (h *Handler) record(ctx context.Context, entry audit.Entry) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(ctx, entry); err != nil {
		slog.Warn("audit record failed", "action", entry.Action, "entityId", entry.EntityID, "err", err)
	}
}

func (h *Handler) recordReconciliation(rows int, result attendance.Result) {
	if h.Metrics == nil {
		return
	}
	days, corrected := 0, 0
	for _, emp := range result.Employees {
		days += len(emp.Days)
		for _, day := range emp.Days {
			if day.CorrectedRecords {
				corrected++
			}
		}
	}
	h.Metrics.RecordReconciliation(rows, len(result.Errors), days, corrected)
}
