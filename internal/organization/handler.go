package organization

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-attendance/internal/transport"
)

type ServiceAPI interface {
	ListDepartments(ctx context.Context) ([]*Department, error)
	GetDepartment(ctx context.Context, id int64) (*Department, error)
	CreateDepartment(ctx context.Context, dto DepartmentDTO) (*Department, error)
	UpdateDepartment(ctx context.Context, id int64, dto DepartmentDTO) (*Department, error)
	DeleteDepartment(ctx context.Context, id int64) error
	ListPositions(ctx context.Context, departmentID int64) ([]*Position, error)
	GetPosition(ctx context.Context, id int64) (*Position, error)
	CreatePosition(ctx context.Context, dto PositionDTO) (*Position, error)
	UpdatePosition(ctx context.Context, id int64, dto PositionDTO) (*Position, error)
	DeletePosition(ctx context.Context, id int64) error
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

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: departments})
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department ID")
		return
	}
	department, err := h.Service.GetDepartment(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, department)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto DepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	department, err := h.Service.CreateDepartment(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, department)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department ID")
		return
	}
	var dto DepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	department, err := h.Service.UpdateDepartment(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, department)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department ID")
		return
	}
	if err := h.Service.DeleteDepartment(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	var departmentID int64
	if raw := r.URL.Query().Get("department_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid department_id")
			return
		}
		departmentID = id
	}
	positions, err := h.Service.ListPositions(r.Context(), departmentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PositionsResponse{Positions: positions})
}

func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid position ID")
		return
	}
	position, err := h.Service.GetPosition(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, position)
}

func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var dto PositionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	position, err := h.Service.CreatePosition(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, position)
}

func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid position ID")
		return
	}
	var dto PositionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	position, err := h.Service.UpdatePosition(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, position)
}

func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid position ID")
		return
	}
	if err := h.Service.DeletePosition(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
