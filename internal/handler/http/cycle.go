package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
	"github.com/paycore-hr/payroll-engine/internal/handler/http/middleware"
	"github.com/paycore-hr/payroll-engine/internal/handler/http/response"
	cycleservice "github.com/paycore-hr/payroll-engine/internal/service/cycle"
)

type CycleHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Advance(w http.ResponseWriter, r *http.Request)
	Recalculate(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)

	// Holidays
	AddHoliday(w http.ResponseWriter, r *http.Request)
	UpdateHoliday(w http.ResponseWriter, r *http.Request)
	DeleteHoliday(w http.ResponseWriter, r *http.Request)
	ListHolidays(w http.ResponseWriter, r *http.Request)

	// Employee payrolls
	ListEmployeePayrolls(w http.ResponseWriter, r *http.Request)
	GetEmployeePayroll(w http.ResponseWriter, r *http.Request)
	AddManualDeduction(w http.ResponseWriter, r *http.Request)
}

type cycleHandlerImpl struct {
	cycleService *cycleservice.Service
}

func NewCycleHandler(cycleService *cycleservice.Service) CycleHandler {
	return &cycleHandlerImpl{cycleService: cycleService}
}

func (h *cycleHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req cycle.CreateCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.cycleService.Create(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll cycle created", result)
}

func (h *cycleHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.cycleService.Get(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *cycleHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.cycleService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

type advanceRequest struct {
	TargetPhase string `json:"target_phase"`
}

func (h *cycleHandlerImpl) Advance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	summary, err := h.cycleService.Advance(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "cycleID"),
		cycle.Phase(req.TargetPhase),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Cycle advanced", summary)
}

func (h *cycleHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.cycleService.Recalculate(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "cycleID"),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Cycle recalculated", summary)
}

func (h *cycleHandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	err := h.cycleService.Reset(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "cycleID"),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Cycle reset", nil)
}

func (h *cycleHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	summary, err := h.cycleService.MarkPaid(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "cycleID"),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Cycle marked as paid", summary)
}

// ========== HOLIDAYS ==========

func (h *cycleHandlerImpl) AddHoliday(w http.ResponseWriter, r *http.Request) {
	var req cycle.UpsertHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.cycleService.AddHoliday(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "cycleID"),
		req,
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday added", result)
}

func (h *cycleHandlerImpl) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	var req cycle.UpsertHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.cycleService.UpdateHoliday(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "cycleID"),
		chi.URLParam(r, "holidayID"),
		req,
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *cycleHandlerImpl) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	err := h.cycleService.DeleteHoliday(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "cycleID"),
		chi.URLParam(r, "holidayID"),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted", nil)
}

func (h *cycleHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	result, err := h.cycleService.ListHolidays(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== EMPLOYEE PAYROLLS ==========

func (h *cycleHandlerImpl) ListEmployeePayrolls(w http.ResponseWriter, r *http.Request) {
	result, err := h.cycleService.ListEmployeePayrolls(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *cycleHandlerImpl) GetEmployeePayroll(w http.ResponseWriter, r *http.Request) {
	result, err := h.cycleService.GetEmployeePayrollDetail(
		r.Context(),
		chi.URLParam(r, "cycleID"),
		chi.URLParam(r, "employeeID"),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *cycleHandlerImpl) AddManualDeduction(w http.ResponseWriter, r *http.Request) {
	var req payroll.AddManualDeductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	summary, err := h.cycleService.AddManualDeduction(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "cycleID"),
		chi.URLParam(r, "employeeID"),
		req,
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Manual deduction added", summary)
}
