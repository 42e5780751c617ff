package leave

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
	"github.com/frahmantamala/hr-attendance/internal/transport"
)

type ServiceAPI interface {
	Submit(ctx context.Context, actor *auth.User, dto SubmitDTO) (*Leave, error)
	ManagerReview(ctx context.Context, actor *auth.User, id int64, dto ReviewDTO) (*Leave, error)
	HRReview(ctx context.Context, actor *auth.User, id int64, dto ReviewDTO) (*Leave, error)
	Cancel(ctx context.Context, actor *auth.User, id int64) (*Leave, error)
	Correct(ctx context.Context, actor *auth.User, id int64, dto CorrectDTO) (*Leave, error)
	Get(ctx context.Context, actor *auth.User, id int64) (*Leave, error)
	ListMine(ctx context.Context, actor *auth.User, filter ListFilter) ([]*Leave, error)
	ListTeam(ctx context.Context, actor *auth.User, filter ListFilter) ([]*Leave, error)
	ListAll(ctx context.Context, filter ListFilter) ([]*Leave, error)
	Location() *time.Location
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

func (h *Handler) leaveID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave ID")
		return 0, false
	}
	return id, true
}

// filter reads status, from and to (YYYY-MM-DD) plus pagination.
func (h *Handler) filter(w http.ResponseWriter, r *http.Request) (ListFilter, bool) {
	limit, offset := h.Pagination(r)
	q := r.URL.Query()
	f := ListFilter{Status: q.Get("status"), Limit: limit, Offset: offset}
	switch f.Status {
	case "", StatusPending, StatusManagerApproved, StatusApproved, StatusRejected, StatusCanceled:
	default:
		h.WriteError(w, http.StatusBadRequest, "invalid status filter")
		return f, false
	}

	loc := h.Service.Location()
	if raw := q.Get("from"); raw != "" {
		from, err := validation.ParseDate("from", raw, loc)
		if err != nil {
			h.HandleServiceError(w, err)
			return f, false
		}
		f.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := validation.ParseDate("to", raw, loc)
		if err != nil {
			h.HandleServiceError(w, err)
			return f, false
		}
		// inclusive of the whole day
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	return f, true
}

func (h *Handler) writeList(w http.ResponseWriter, list []*Leave, f ListFilter) {
	h.WriteJSON(w, http.StatusOK, LeavesResponse{Leaves: list, Limit: f.Limit, Offset: f.Offset})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var dto SubmitDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Service.Submit(r.Context(), user, dto)
	if err != nil {
		h.Logger.Warn("Submit: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.leaveID(w, r)
	if !ok {
		return
	}
	l, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	list, err := h.Service.ListMine(r.Context(), user, f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeList(w, list, f)
}

func (h *Handler) ListTeam(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	list, err := h.Service.ListTeam(r.Context(), user, f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeList(w, list, f)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	list, err := h.Service.ListAll(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeList(w, list, f)
}

func (h *Handler) ManagerReview(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.ManagerReview)
}

func (h *Handler) HRReview(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.HRReview)
}

type reviewFunc func(ctx context.Context, actor *auth.User, id int64, dto ReviewDTO) (*Leave, error)

func (h *Handler) review(w http.ResponseWriter, r *http.Request, fn reviewFunc) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.leaveID(w, r)
	if !ok {
		return
	}
	var dto ReviewDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := fn(r.Context(), user, id, dto)
	if err != nil {
		h.Logger.Warn("review: service error", "error", err, "leave_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.leaveID(w, r)
	if !ok {
		return
	}
	l, err := h.Service.Cancel(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) Correct(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.leaveID(w, r)
	if !ok {
		return
	}
	var dto CorrectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Service.Correct(r.Context(), user, id, dto)
	if err != nil {
		h.Logger.Warn("Correct: service error", "error", err, "leave_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}
