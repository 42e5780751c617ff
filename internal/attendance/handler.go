package attendance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/transport"
)

type ServiceAPI interface {
	PunchIn(ctx context.Context, actor *auth.User) (*Punch, error)
	PunchOut(ctx context.Context, actor *auth.User) (*Punch, error)
	Records(ctx context.Context, actor *auth.User, period Period) ([]DailyRecord, error)
	RequestCorrection(ctx context.Context, actor *auth.User, dto CorrectionDTO) (*Correction, error)
	MyCorrections(ctx context.Context, actor *auth.User, filter CorrectionFilter) ([]*Correction, error)
	ListCorrections(ctx context.Context, filter CorrectionFilter) ([]*Correction, error)
	GetCorrection(ctx context.Context, actor *auth.User, id int64) (*Correction, error)
	ReviewCorrection(ctx context.Context, actor *auth.User, id int64, dto ReviewDTO) (*Correction, error)
	DailyReport(ctx context.Context, period Period, departmentID int64) ([]DailyReportRow, error)
	MonthlySummary(ctx context.Context, period Period, departmentID int64) ([]MonthlySummary, error)
	ExportMonthlySummary(ctx context.Context, w io.Writer, period Period, departmentID int64) error
	Location() *time.Location
	Now() time.Time
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

func (h *Handler) PunchIn(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	p, err := h.Service.PunchIn(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) PunchOut(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	p, err := h.Service.PunchOut(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request) (Period, bool) {
	q := r.URL.Query()
	p, err := ParsePeriod(q.Get("from"), q.Get("to"), h.Service.Location(), h.Service.Now())
	if err != nil {
		h.HandleServiceError(w, err)
		return p, false
	}
	return p, true
}

func (h *Handler) departmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("department_id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid department_id")
		return 0, false
	}
	return id, true
}

func (h *Handler) MyRecords(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	p, ok := h.period(w, r)
	if !ok {
		return
	}
	records, err := h.Service.Records(r.Context(), user, p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DailyRecordsResponse{
		From:    p.From.Format(dateLayout),
		To:      p.To.Format(dateLayout),
		Records: records,
	})
}

func (h *Handler) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var dto CorrectionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.Service.RequestCorrection(r.Context(), user, dto)
	if err != nil {
		h.Logger.Warn("RequestCorrection: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) correctionFilter(w http.ResponseWriter, r *http.Request) (CorrectionFilter, bool) {
	limit, offset := h.Pagination(r)
	f := CorrectionFilter{Status: r.URL.Query().Get("status"), Limit: limit, Offset: offset}
	switch f.Status {
	case "", CorrectionPending, CorrectionApproved, CorrectionRejected:
		return f, true
	}
	h.WriteError(w, http.StatusBadRequest, "invalid status filter")
	return f, false
}

func (h *Handler) MyCorrections(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	f, ok := h.correctionFilter(w, r)
	if !ok {
		return
	}
	list, err := h.Service.MyCorrections(r.Context(), user, f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CorrectionsResponse{Corrections: list, Limit: f.Limit, Offset: f.Offset})
}

func (h *Handler) ListCorrections(w http.ResponseWriter, r *http.Request) {
	f, ok := h.correctionFilter(w, r)
	if !ok {
		return
	}
	list, err := h.Service.ListCorrections(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CorrectionsResponse{Corrections: list, Limit: f.Limit, Offset: f.Offset})
}

func (h *Handler) GetCorrection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid correction ID")
		return
	}
	c, err := h.Service.GetCorrection(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) ReviewCorrection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid correction ID")
		return
	}
	var dto ReviewDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.Service.ReviewCorrection(r.Context(), user, id, dto)
	if err != nil {
		h.Logger.Warn("ReviewCorrection: service error", "error", err, "correction_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.period(w, r)
	if !ok {
		return
	}
	dept, ok := h.departmentID(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.DailyReport(r.Context(), p, dept)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DailyReportResponse{From: p.From.Format(dateLayout), To: p.To.Format(dateLayout), Rows: rows})
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) (Period, int64, bool) {
	p, err := ParseMonth(r.URL.Query().Get("month"), h.Service.Location(), h.Service.Now())
	if err != nil {
		h.HandleServiceError(w, err)
		return p, 0, false
	}
	dept, ok := h.departmentID(w, r)
	return p, dept, ok
}

func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	p, dept, ok := h.monthly(w, r)
	if !ok {
		return
	}
	list, err := h.Service.MonthlySummary(r.Context(), p, dept)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MonthlySummaryResponse{Month: p.From.Format("2006-01"), Summaries: list})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ExportMonthlySummary(w http.ResponseWriter, r *http.Request) {
	p, dept, ok := h.monthly(w, r)
	if !ok {
		return
	}
	// the workbook is written only once it is complete
	var buf bytes.Buffer
	if err := h.Service.ExportMonthlySummary(r.Context(), &buf, p, dept); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s.xlsx"`, p.From.Format("2006-01")))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("failed to write xlsx export", "error", err)
	}
}
