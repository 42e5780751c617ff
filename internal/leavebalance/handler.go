package leavebalance

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/transport"
)

type ServiceAPI interface {
	ListForEmployee(ctx context.Context, employeeID int64) ([]*Balance, error)
	Ledger(ctx context.Context, employeeID, leaveTypeID int64, limit int) ([]LedgerEntry, error)
	Adjust(ctx context.Context, actor *auth.User, employeeID, leaveTypeID int64, dto AdjustDTO) (*Balance, error)
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

func (h *Handler) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.writeBalances(w, r, user.EmployeeID)
}

func (h *Handler) GetEmployeeBalances(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}
	h.writeBalances(w, r, employeeID)
}

func (h *Handler) writeBalances(w http.ResponseWriter, r *http.Request, employeeID int64) {
	balances, err := h.Service.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, BalancesResponse{EmployeeID: employeeID, Balances: balances})
}

func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}
	leaveTypeID, err := h.IDParam(r, "leaveTypeID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave type ID")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	entries, err := h.Service.Ledger(r.Context(), employeeID, leaveTypeID, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, LedgerResponse{Entries: entries})
}

func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	employeeID, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}
	leaveTypeID, err := h.IDParam(r, "leaveTypeID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid leave type ID")
		return
	}
	var dto AdjustDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.Adjust(r.Context(), user, employeeID, leaveTypeID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}
