package stub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/pkg/enums"
	pkgerrors "github.com/glowora/payconfirm/pkg/errors"
	"github.com/glowora/payconfirm/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Server is the in-memory payments backend used for local development and
// integration tests. It speaks the same three contracts the production
// gateway client consumes.
type Server struct {
	logg  *logger.Logger
	store *Store
}

// ServerParams configure the stub server.
type ServerParams struct {
	Logger *logger.Logger
	Store  *Store
}

// NewServer builds the stub server.
func NewServer(params ServerParams) (*Server, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	return &Server{logg: params.Logger, store: params.Store}, nil
}

// Router wires the stub routes behind request-id and logging middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logging)

	r.Post("/payment-intents", s.handleCreateIntent)
	r.Get("/payments/check/{paymentCode}", s.handleCheck)
	r.Post("/appointments/{appointmentID}/cancel", s.handleCancel)

	return r
}

type createIntentRequest struct {
	ReferenceID string          `json:"referenceId" validate:"required"`
	PaymentType string          `json:"paymentType" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

func (s *Server) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(ctx, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed request body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeError(ctx, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid intent request"))
		return
	}
	paymentType, err := enums.ParsePaymentType(req.PaymentType)
	if err != nil {
		s.writeError(ctx, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
		return
	}
	if !req.Amount.IsPositive() {
		s.writeError(ctx, w, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive"))
		return
	}

	intent := s.store.CreateIntent(req.ReferenceID, paymentType, req.Amount)
	ctx = s.logg.WithPaymentCode(ctx, intent.PaymentCode)
	s.logg.Info(ctx, "stub intent created")
	s.writeSuccess(w, http.StatusCreated, intent)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paymentCode := chi.URLParam(r, "paymentCode")

	snapshot, err := s.store.Check(paymentCode)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, snapshot)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentID := chi.URLParam(r, "appointmentID")

	if err := s.store.CancelByReference(appointmentID); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.logg.Info(s.logg.WithField(ctx, "appointment_id", appointmentID), "stub reservation canceled")
	s.writeSuccess(w, http.StatusOK, map[string]bool{"canceled": true})
}

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Data: data})
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.DetailsAllowed || typed.Code() == pkgerrors.CodeNotFound {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	s.logg.Error(ctx, "request failed", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: apiError{
		Code:    string(typed.Code()),
		Message: msg,
	}})
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(s.logg.WithRequestID(r.Context(), reqID)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := s.logg.WithFields(r.Context(), map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		ctx = s.logg.WithFields(ctx, map[string]any{
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		s.logg.Info(ctx, "request.complete")
	})
}
