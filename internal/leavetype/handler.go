package leavetype

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/transport"
)

type ServiceAPI interface {
	ListAvailable(ctx context.Context, gender string) ([]*LeaveType, error)
	ListAll(ctx context.Context) ([]*LeaveType, error)
	Get(ctx context.Context, id int64) (*LeaveType, error)
	Create(ctx context.Context, dto LeaveTypeDTO) (*LeaveType, error)
	Update(ctx context.Context, id int64, dto LeaveTypeDTO) (*LeaveType, error)
	SetActive(ctx context.Context, id int64, active bool) (*LeaveType, error)
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

// GetLeaveTypes lists the caller's requestable types; managers of the
// catalog get every type with ?all=true.
func (h *Handler) GetLeaveTypes(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var (
		types []*LeaveType
		err   error
	)
	if r.URL.Query().Get("all") == "true" && user.HasPermission(auth.PermLeaveTypesManage) {
		types, err = h.Service.ListAll(r.Context())
	} else {
		types, err = h.Service.ListAvailable(r.Context(), user.Gender)
	}
	if err != nil {
		h.Logger.Error("GetLeaveTypes: failed to get leave types", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, LeaveTypesResponse{LeaveTypes: types})
}

func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var dto LeaveTypeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateLeaveType(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave type ID")
		return
	}
	var dto LeaveTypeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) ActivateLeaveType(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) DeactivateLeaveType(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave type ID")
		return
	}
	t, err := h.Service.SetActive(r.Context(), id, active)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}
