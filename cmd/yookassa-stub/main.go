// Command yookassa-stub is a local stand-in for the YooKassa payments API.
// It keeps payments in memory and can post a notification when a payment is
// marked as succeeded or canceled.
package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/util"
)

const defaultAddr = ":9090"

type stub struct {
	mu        sync.Mutex
	payments  map[string]models.Payment
	notifyURL string
	client    *http.Client
	log       *zap.SugaredLogger
}

func newStub(log *zap.SugaredLogger, notifyURL string) *stub {
	return &stub{
		payments:  make(map[string]models.Payment),
		notifyURL: notifyURL,
		client:    &http.Client{Timeout: 5 * time.Second},
		log:       log,
	}
}

func (s *stub) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments", s.createPayment)
	mux.HandleFunc("GET /payments/{id}", s.getPayment)
	mux.HandleFunc("POST /payments/{id}/succeed", s.setStatus(models.PaymentStatusSucceeded))
	mux.HandleFunc("POST /payments/{id}/cancel", s.setStatus(models.PaymentStatusCanceled))
	return mux
}

type createRequest struct {
	Amount       models.Amount       `json:"amount"`
	Confirmation models.Confirmation `json:"confirmation"`
	Description  string              `json:"description"`
}

func (s *stub) createPayment(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := r.BasicAuth(); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"type": "error", "code": "invalid_credentials"})
		return
	}
	if r.Header.Get("Idempotence-Key") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"type": "error", "code": "invalid_request"})
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"type": "error", "code": "invalid_request"})
		return
	}

	id := uuid.NewString()
	payment := models.Payment{
		ID:     id,
		Status: models.PaymentStatusPending,
		Amount: req.Amount,
		Confirmation: models.Confirmation{
			Type:            "redirect",
			ConfirmationURL: "http://" + r.Host + "/checkout/" + id,
			ReturnURL:       req.Confirmation.ReturnURL,
		},
		Description: req.Description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.payments[id] = payment
	s.mu.Unlock()

	s.log.Infow("Payment created", "paymentID", id, "amount", req.Amount.Value, "description", req.Description)
	writeJSON(w, http.StatusOK, payment)
}

func (s *stub) getPayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	payment, ok := s.payments[r.PathValue("id")]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"type": "error", "code": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (s *stub) setStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		s.mu.Lock()
		payment, ok := s.payments[id]
		if ok {
			payment.Status = status
			payment.Paid = status == models.PaymentStatusSucceeded
			s.payments[id] = payment
		}
		s.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"type": "error", "code": "not_found"})
			return
		}

		s.notify(payment)
		writeJSON(w, http.StatusOK, payment)
	}
}

func (s *stub) notify(payment models.Payment) {
	if s.notifyURL == "" {
		return
	}

	body, err := json.Marshal(models.PaymentNotification{
		Type:   "notification",
		Event:  "payment." + payment.Status,
		Object: payment,
	})
	if err != nil {
		s.log.Errorw("failed to marshal notification", "error", err)
		return
	}

	resp, err := s.client.Post(s.notifyURL, "application/json", bytes.NewReader(body))
	if err != nil {
		s.log.Errorw("failed to send notification", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Warnw("notification returned non-2xx status", "status", resp.StatusCode)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	logger := util.NewZapLogger(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	addr := os.Getenv("STUB_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	s := newStub(logger, os.Getenv("NOTIFY_URL"))
	logger.Infof("YooKassa stub listening on %s", addr)
	if err := http.ListenAndServe(addr, s.routes()); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
