package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openportfolio/portfolio-backend/internal/domain"
	"github.com/openportfolio/portfolio-backend/internal/usecase/poller"
	"github.com/openportfolio/portfolio-backend/internal/usecase/valuation"
)

// OverviewService computes portfolio snapshots
type OverviewService interface {
	Overview(ctx context.Context, account, baseCurrency string) (*valuation.Overview, error)
}

// PollService runs a price poll cycle over all assets
type PollService interface {
	PollAll(ctx context.Context) (poller.Summary, error)
}

// Server implements the REST API over the portfolio use cases
type Server struct {
	AssetRepo    domain.AssetRepository
	HoldingRepo  domain.HoldingRepository
	PriceRepo    domain.PriceRepository
	Valuation    OverviewService
	Poller       PollService
	BaseCurrency string
	Logger       *zap.Logger
}

// NewServer creates a new REST server instance
func NewServer(
	assetRepo domain.AssetRepository,
	holdingRepo domain.HoldingRepository,
	priceRepo domain.PriceRepository,
	valuationService OverviewService,
	pollService PollService,
	baseCurrency string,
	logger *zap.Logger,
) *Server {
	return &Server{
		AssetRepo:    assetRepo,
		HoldingRepo:  holdingRepo,
		PriceRepo:    priceRepo,
		Valuation:    valuationService,
		Poller:       pollService,
		BaseCurrency: baseCurrency,
		Logger:       logger,
	}
}

// Router wires the HTTP routes. Everything under /api requires the token;
// /healthz stays open for probes.
func (s *Server) Router(apiToken string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(s.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(apiToken))

		r.Get("/assets", s.handleListAssets)
		r.Post("/assets", s.handleCreateAsset)

		r.Get("/holdings", s.handleListHoldings)
		r.Post("/holdings", s.handleCreateHolding)
		r.Delete("/holdings/{id}", s.handleDeleteHolding)

		r.Get("/prices/latest", s.handleLatestPrices)
		r.Post("/prices/poll", s.handlePoll)

		r.Get("/overview", s.handleOverview)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type assetResponse struct {
	ID             string `json:"id"`
	Symbol         string `json:"symbol"`
	Kind           string `json:"kind"`
	Provider       string `json:"provider"`
	ProviderRef    string `json:"provider_ref,omitempty"`
	NativeCurrency string `json:"native_currency,omitempty"`
}

func toAssetResponse(a *domain.Asset) assetResponse {
	return assetResponse{
		ID:             a.ID.String(),
		Symbol:         a.Symbol,
		Kind:           string(a.Kind),
		Provider:       string(a.Provider),
		ProviderRef:    a.ProviderRef,
		NativeCurrency: a.NativeCurrency,
	}
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.AssetRepo.List(r.Context())
	if err != nil {
		s.serverError(w, "failed to list assets", err)
		return
	}

	out := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, toAssetResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

type createAssetRequest struct {
	Symbol         string `json:"symbol"`
	Kind           string `json:"kind"`
	Provider       string `json:"provider"`
	ProviderRef    string `json:"provider_ref"`
	NativeCurrency string `json:"native_currency"`
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset := &domain.Asset{
		ID:             uuid.New(),
		Symbol:         req.Symbol,
		Kind:           domain.AssetKind(req.Kind),
		Provider:       domain.ProviderName(req.Provider),
		ProviderRef:    req.ProviderRef,
		NativeCurrency: req.NativeCurrency,
	}
	if err := asset.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := s.AssetRepo.GetBySymbol(r.Context(), asset.Symbol)
	if err != nil {
		s.serverError(w, "failed to check asset symbol", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "asset symbol already exists")
		return
	}

	if err := s.AssetRepo.Create(r.Context(), asset); err != nil {
		s.serverError(w, "failed to create asset", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssetResponse(asset))
}

type holdingResponse struct {
	ID       string `json:"id"`
	Account  string `json:"account"`
	AssetID  string `json:"asset_id"`
	Quantity string `json:"quantity"`
}

func toHoldingResponse(h *domain.Holding) holdingResponse {
	return holdingResponse{
		ID:       h.ID.String(),
		Account:  h.Account,
		AssetID:  h.AssetID.String(),
		Quantity: h.Quantity.String(),
	}
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	var holdings []*domain.Holding
	var err error
	if account := r.URL.Query().Get("account"); account != "" {
		holdings, err = s.HoldingRepo.ListByAccount(r.Context(), account)
	} else {
		holdings, err = s.HoldingRepo.List(r.Context())
	}
	if err != nil {
		s.serverError(w, "failed to list holdings", err)
		return
	}

	out := make([]holdingResponse, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, toHoldingResponse(h))
	}
	writeJSON(w, http.StatusOK, out)
}

type createHoldingRequest struct {
	Account  string `json:"account"`
	AssetID  string `json:"asset_id"`
	Quantity string `json:"quantity"`
}

func (s *Server) handleCreateHolding(w http.ResponseWriter, r *http.Request) {
	var req createHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assetID, err := uuid.Parse(req.AssetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset_id format")
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quantity format")
		return
	}

	if _, err := s.AssetRepo.GetByID(r.Context(), assetID); err != nil {
		s.mapError(w, err)
		return
	}

	holding := &domain.Holding{
		ID:       uuid.New(),
		Account:  req.Account,
		AssetID:  assetID,
		Quantity: quantity,
	}
	if holding.Account == "" {
		holding.Account = domain.DefaultAccount
	}
	if err := holding.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.HoldingRepo.Create(r.Context(), holding); err != nil {
		s.serverError(w, "failed to create holding", err)
		return
	}

	writeJSON(w, http.StatusCreated, toHoldingResponse(holding))
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid holding id format")
		return
	}

	if err := s.HoldingRepo.Delete(r.Context(), id); err != nil {
		s.mapError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type pricePointResponse struct {
	AssetID      string    `json:"asset_id"`
	Symbol       string    `json:"symbol"`
	Timestamp    time.Time `json:"timestamp"`
	Price        string    `json:"price"`
	BaseCurrency string    `json:"base_ccy"`
	Source       string    `json:"source"`
}

// handleLatestPrices reports the most recent stored price point per asset.
// Assets without any recorded price are simply absent from the response.
func (s *Server) handleLatestPrices(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base_ccy")
	if base == "" {
		base = s.BaseCurrency
	}

	assets, err := s.AssetRepo.List(r.Context())
	if err != nil {
		s.serverError(w, "failed to list assets", err)
		return
	}

	out := make([]pricePointResponse, 0, len(assets))
	for _, a := range assets {
		point, err := s.PriceRepo.GetLatest(r.Context(), a.ID, base)
		if err != nil {
			s.serverError(w, "failed to read latest price", err)
			return
		}
		if point == nil {
			continue
		}
		out = append(out, pricePointResponse{
			AssetID:      a.ID.String(),
			Symbol:       a.Symbol,
			Timestamp:    point.Timestamp,
			Price:        point.Price.String(),
			BaseCurrency: point.BaseCurrency,
			Source:       point.Source,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type pollResponse struct {
	OK   int `json:"ok"`
	Fail int `json:"fail"`
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Poller.PollAll(r.Context())
	if err != nil {
		s.serverError(w, "poll cycle failed", err)
		return
	}
	writeJSON(w, http.StatusOK, pollResponse{OK: summary.OK, Fail: summary.Fail})
}

type overviewLineResponse struct {
	Symbol    string `json:"symbol"`
	Kind      string `json:"kind"`
	Account   string `json:"account"`
	Quantity  string `json:"quantity"`
	LastPrice string `json:"last_price"`
	Value     string `json:"value"`
}

type overviewResponse struct {
	BaseCurrency string                 `json:"base_ccy"`
	Total        string                 `json:"total"`
	Lines        []overviewLineResponse `json:"lines"`
	Omitted      []string               `json:"omitted"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base_ccy")
	if base == "" {
		base = s.BaseCurrency
	}
	account := r.URL.Query().Get("account")

	overview, err := s.Valuation.Overview(r.Context(), account, base)
	if err != nil {
		s.serverError(w, "failed to compute overview", err)
		return
	}

	resp := overviewResponse{
		BaseCurrency: overview.BaseCurrency,
		Total:        overview.Total.String(),
		Lines:        make([]overviewLineResponse, 0, len(overview.Lines)),
		Omitted:      overview.Omitted,
	}
	if resp.Omitted == nil {
		resp.Omitted = []string{}
	}
	for _, line := range overview.Lines {
		resp.Lines = append(resp.Lines, overviewLineResponse{
			Symbol:    line.Symbol,
			Kind:      string(line.Kind),
			Account:   line.Account,
			Quantity:  line.Quantity.String(),
			LastPrice: line.LastPrice.String(),
			Value:     line.Value.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.Logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

// mapError translates domain and repository errors to HTTP status codes
func (s *Server) mapError(w http.ResponseWriter, err error) {
	errorMsg := err.Error()

	if errors.Is(err, domain.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, errorMsg)
		return
	}

	if strings.Contains(errorMsg, "not found") {
		writeError(w, http.StatusNotFound, errorMsg)
		return
	}

	s.Logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, errorMsg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
