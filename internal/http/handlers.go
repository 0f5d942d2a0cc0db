package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"quickspese/internal/core"
	"quickspese/internal/log"
	"quickspese/internal/middleware/trace"
	"quickspese/internal/services"
)

// ListResponse is the body of GET /expenses.
type ListResponse struct {
	Expenses []core.Expense    `json:"expenses"`
	Count    int               `json:"count"`
	Filters  core.QueryFilters `json:"filters"`
	Total    core.Money        `json:"total"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ServiceUnavailableError("not ready").WithRequestID(trace.GetRequestID(r.Context())).Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

// handleCommand interprets one sentence. Every sentence yields an outcome,
// so only transport and storage problems produce errors. Outcomes whose
// values were refused are sent with 422.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	reqID := trace.GetRequestID(ctx)

	req, err := ParseCommandRequest(r)
	if err != nil {
		BadRequestError(err.Error()).WithRequestID(reqID).Write(w)
		return
	}

	out, err := s.svc.Execute(ctx, req.Text)
	if err != nil {
		s.fail(w, r, "Command failed", err)
		return
	}
	status := http.StatusOK
	if out.Rejected {
		status = http.StatusUnprocessableEntity
	}
	NewJSONResponse().Status(status).Body(out).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	filters, problems := ParseFilters(r.URL.Query(), s.location)
	if len(problems) > 0 {
		ValidationError(problems).WithRequestID(trace.GetRequestID(ctx)).Write(w)
		return
	}

	expenses, err := s.svc.List(ctx, filters)
	if err != nil {
		s.fail(w, r, "List expenses failed", err)
		return
	}

	total := core.Money{Currency: core.DefaultCurrency}
	if len(expenses) > 0 {
		total.Currency = expenses[0].Currency
	}
	for _, e := range expenses {
		total.Cents += e.AmountCents
	}

	NewJSONResponse().Body(ListResponse{
		Expenses: expenses,
		Count:    len(expenses),
		Filters:  filters,
		Total:    total,
	}).Write(w)
}

// handleDeleteExpense removes one expense by id: DELETE /expenses/{id}.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	id := strings.TrimPrefix(r.URL.Path, "/expenses/")
	if id == "" || strings.Contains(id, "/") {
		NotFoundError("expense not found").WithRequestID(trace.GetRequestID(ctx)).Write(w)
		return
	}

	out, err := s.svc.ExecuteCommand(ctx, core.DeleteByID{ID: id})
	if err != nil {
		s.fail(w, r, "Delete expense failed", err)
		return
	}
	if !out.Changed {
		NotFoundError(out.Message).WithRequestID(trace.GetRequestID(ctx)).Write(w)
		return
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	sum, err := s.svc.Summary(r.Context())
	if err != nil {
		s.fail(w, r, "Summary failed", err)
		return
	}
	NewJSONResponse().Body(sum).Write(w)
}

// fail logs err with the request logger and answers 500 without leaking
// internals.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, msg, err, log.OpApply,
		log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")))
	InternalServerError("internal error").WithRequestID(trace.GetRequestID(ctx)).Write(w)
}

var _ CommandRunner = (*services.CommandService)(nil)
