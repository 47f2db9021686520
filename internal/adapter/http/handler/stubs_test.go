package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/usecase"
)

type stubEntrySetService struct {
	createFn func(ctx context.Context, input usecase.CreateEntrySetInput) (*domain.EntrySet, bool, error)
	getFn    func(ctx context.Context, id string) (*domain.EntrySet, error)
}

func (s *stubEntrySetService) CreateEntrySet(ctx context.Context, input usecase.CreateEntrySetInput) (*domain.EntrySet, bool, error) {
	return s.createFn(ctx, input)
}

func (s *stubEntrySetService) GetEntrySet(ctx context.Context, id string) (*domain.EntrySet, error) {
	return s.getFn(ctx, id)
}

type stubBalanceService struct {
	calculateFn func(ctx context.Context, input usecase.CalculateBalanceInput) (*domain.Balance, error)
	names       []string
	def         string
}

func (s *stubBalanceService) Calculate(ctx context.Context, input usecase.CalculateBalanceInput) (*domain.Balance, error) {
	return s.calculateFn(ctx, input)
}

func (s *stubBalanceService) AvailableBalances() []string { return s.names }

func (s *stubBalanceService) DefaultBalance() string { return s.def }

type stubEntryService struct {
	listFn func(ctx context.Context, input usecase.GetEntriesByAccountInput) (*usecase.EntryPage, error)
}

func (s *stubEntryService) GetEntriesByAccount(ctx context.Context, input usecase.GetEntriesByAccountInput) (*usecase.EntryPage, error) {
	return s.listFn(ctx, input)
}

type stubLedgerService struct {
	report *usecase.ConsistencyReport
	err    error
}

func (s *stubLedgerService) CheckConsistency(context.Context) (*usecase.ConsistencyReport, error) {
	return s.report, s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func strPtr(s string) *string { return &s }
