package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn    func(userID string, categoryID *string, kind models.TransactionKind, amount int64, description string, date time.Time, rule *models.RecurrenceRule) (*models.Transaction, error)
	getUserTransactionsFn  func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getMonthTransactionsFn func(userID string, year int, month time.Month, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn   func(userID, transactionID string) (*models.Transaction, error)
	futureSiblingsFn       func(userID, transactionID string) ([]models.Transaction, error)
	updateTransactionFn    func(userID, transactionID string, fields services.TransactionUpdate, applyToFuture bool) (*models.Transaction, error)
	updateRecurrenceFn     func(userID, transactionID string, rule models.RecurrenceRule) (*models.Transaction, error)
	deleteTransactionFn    func(userID, transactionID string, wholeSeries bool) error
}

func (m *mockTransactionService) CreateTransaction(userID string, categoryID *string, kind models.TransactionKind, amount int64, description string, date time.Time, rule *models.RecurrenceRule) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, categoryID, kind, amount, description, date, rule)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetMonthTransactions(userID string, year int, month time.Month, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.getMonthTransactionsFn != nil {
		return m.getMonthTransactionsFn(userID, year, month, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) FutureSiblings(userID, transactionID string) ([]models.Transaction, error) {
	if m.futureSiblingsFn != nil {
		return m.futureSiblingsFn(userID, transactionID)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID string, fields services.TransactionUpdate, applyToFuture bool) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, fields, applyToFuture)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateRecurrence(userID, transactionID string, rule models.RecurrenceRule) (*models.Transaction, error) {
	if m.updateRecurrenceFn != nil {
		return m.updateRecurrenceFn(userID, transactionID, rule)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string, wholeSeries bool) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID, wholeSeries)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

const testTxID = "018f0d70-0000-7000-8000-000000000001"

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("user-1"))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/month/:year/:month", handler.GetMonthTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.GET("/transactions/:id/future-siblings", handler.GetFutureSiblings)
	auth.PUT("/transactions/:id/recurrence", handler.UpdateRecurrence)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(userID string, _ *string, kind models.TransactionKind, amount int64, desc string, _ time.Time, _ *models.RecurrenceRule) (*models.Transaction, error) {
				return &models.Transaction{
					Base:   models.Base{ID: testTxID},
					UserID: userID,
					Kind:   kind,
					Amount: amount,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"kind":"income","amount":5000,"description":"Salary"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["amount"].(float64) != 5000 {
			t.Errorf("expected amount 5000, got %v", tx["amount"])
		}
		if result["series_size"].(float64) != 1 {
			t.Errorf("expected series_size 1, got %v", result["series_size"])
		}
	})

	t.Run("passes recurrence rule through and reports series size", func(t *testing.T) {
		var gotRule *models.RecurrenceRule
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ string, _ *string, _ models.TransactionKind, _ int64, _ string, _ time.Time, rule *models.RecurrenceRule) (*models.Transaction, error) {
				gotRule = rule
				return &models.Transaction{
					Base:       models.Base{ID: testTxID},
					SiblingIDs: models.NewIDSet("a", "b", "c"),
					Recurrence: *rule,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"kind":"spending","amount":2500,"description":"Gym","date":"2025-01-01","recurrence":{"period":1,"unit":"week","end_date":"2025-01-29"}}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotRule == nil || gotRule.Period != 1 || gotRule.Unit != models.UnitWeek {
			t.Fatalf("rule not forwarded to service: %+v", gotRule)
		}
		result := parseJSON(t, rec)
		if result["series_size"].(float64) != 4 {
			t.Errorf("expected series_size 4, got %v", result["series_size"])
		}
	})

	t.Run("returns 400 on invalid recurrence unit", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"kind":"spending","amount":2500,"recurrence":{"period":1,"unit":"fortnight","end_date":"2025-01-29"}}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions", `{"kind":"spending","amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 when rule cannot expand", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ string, _ *string, _ models.TransactionKind, _ int64, _ string, _ time.Time, _ *models.RecurrenceRule) (*models.Transaction, error) {
				return nil, apperrors.ErrExcessiveExpansion
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"kind":"spending","amount":100,"recurrence":{"period":1,"unit":"day","end_date":"2999-01-01"}}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXCESSIVE_EXPANSION")
	})
}

func TestTransactionHandler_GetFutureSiblings(t *testing.T) {
	t.Run("returns siblings with count", func(t *testing.T) {
		txSvc := &mockTransactionService{
			futureSiblingsFn: func(_, _ string) ([]models.Transaction, error) {
				return []models.Transaction{
					{Base: models.Base{ID: "a"}},
					{Base: models.Base{ID: "b"}},
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/"+testTxID+"/future-siblings", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["count"].(float64) != 2 {
			t.Errorf("expected count 2, got %v", result["count"])
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/not-a-uuid/future-siblings", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("forwards apply_to_future flag", func(t *testing.T) {
		var gotApply bool
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_, _ string, _ services.TransactionUpdate, applyToFuture bool) (*models.Transaction, error) {
				gotApply = applyToFuture
				return &models.Transaction{Base: models.Base{ID: testTxID}}, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/"+testTxID+"?apply_to_future=true", `{"amount":3000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotApply {
			t.Error("expected apply_to_future to be forwarded as true")
		}
	})

	t.Run("returns 404 on unknown transaction", func(t *testing.T) {
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_, _ string, _ services.TransactionUpdate, _ bool) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/"+testTxID, `{"amount":3000}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_UpdateRecurrence(t *testing.T) {
	t.Run("forwards the new rule", func(t *testing.T) {
		var gotRule models.RecurrenceRule
		txSvc := &mockTransactionService{
			updateRecurrenceFn: func(_, _ string, rule models.RecurrenceRule) (*models.Transaction, error) {
				gotRule = rule
				return &models.Transaction{Base: models.Base{ID: testTxID}, Recurrence: rule}, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/"+testTxID+"/recurrence",
			`{"period":2,"unit":"month","end_date":"2025-06-30"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotRule.Period != 2 || gotRule.Unit != models.UnitMonth {
			t.Errorf("rule not forwarded: %+v", gotRule)
		}
	})

	t.Run("returns 400 on missing end date", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/"+testTxID+"/recurrence",
			`{"period":2,"unit":"month"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("forwards series flag", func(t *testing.T) {
		var gotSeries bool
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ string, wholeSeries bool) error {
				gotSeries = wholeSeries
				return nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/"+testTxID+"?series=true", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotSeries {
			t.Error("expected series flag to be forwarded as true")
		}
	})

	t.Run("defaults to single delete", func(t *testing.T) {
		var gotSeries bool
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ string, wholeSeries bool) error {
				gotSeries = wholeSeries
				return nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/"+testTxID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotSeries {
			t.Error("expected series flag to default to false")
		}
	})
}

func TestTransactionHandler_GetMonthTransactions(t *testing.T) {
	t.Run("parses year and month", func(t *testing.T) {
		var gotYear int
		var gotMonth time.Month
		txSvc := &mockTransactionService{
			getMonthTransactionsFn: func(_ string, year int, month time.Month, _ pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
				gotYear, gotMonth = year, month
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/month/2025/3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotYear != 2025 || gotMonth != time.March {
			t.Errorf("expected 2025/March, got %d/%v", gotYear, gotMonth)
		}
	})

	t.Run("returns 400 on invalid month", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/month/2025/13", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
