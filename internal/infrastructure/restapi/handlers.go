package restapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
	solanainfra "solfolio/internal/infrastructure/solana"
)

// AddressesRequest is the shared request body for batch endpoints.
type AddressesRequest struct {
	Addresses []string `json:"addresses"`
}

// PortfolioResponse wraps a batch portfolio result.
type PortfolioResponse struct {
	Data struct {
		Portfolios []entity.WalletPortfolio `json:"portfolios"`
	} `json:"data"`
	RejectedAddresses map[string]string `json:"rejectedAddresses,omitempty"`
	StatusMessage     string            `json:"status_message"`
}

// NFTsResponse wraps a batch NFT collection result.
type NFTsResponse struct {
	Data struct {
		NFTs []entity.NFTAsset `json:"nfts"`
	} `json:"data"`
	RejectedAddresses map[string]string `json:"rejectedAddresses,omitempty"`
	StatusMessage     string            `json:"status_message"`
}

// SummaryResponse wraps an aggregate summary result.
type SummaryResponse struct {
	Data struct {
		Summary entity.PortfolioSummary `json:"summary"`
	} `json:"data"`
	RejectedAddresses map[string]string `json:"rejectedAddresses,omitempty"`
	StatusMessage     string            `json:"status_message"`
}

// BurnResponse wraps an unsigned burn transaction.
type BurnResponse struct {
	Data struct {
		Transaction entity.BurnTransaction `json:"transaction"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error             string            `json:"error"`
	RejectedAddresses map[string]string `json:"rejectedAddresses,omitempty"`
}

// PortfolioHandler handles HTTP requests for portfolios, NFTs, summaries
// and burn transactions.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	nftService       port.NFTService
	summaryService   port.SummaryService
	burnService      port.BurnService
	walletProvider   port.WalletProvider
	logger           port.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(
	ps port.PortfolioService,
	ns port.NFTService,
	ss port.SummaryService,
	bs port.BurnService,
	wp port.WalletProvider,
	l port.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		nftService:       ns,
		summaryService:   ss,
		burnService:      bs,
		walletProvider:   wp,
		logger:           l,
	}
}

// parseAddresses binds and validates the addresses of a batch request. It
// returns the full requested list (normalized), the valid subset, and the
// rejected map. It writes the error response itself when nothing usable
// remains.
func (h *PortfolioHandler) parseAddresses(c *gin.Context) (requested, valid []string, rejected map[string]string, ok bool) {
	var req AddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return nil, nil, nil, false
	}
	if len(req.Addresses) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "addresses list is empty"})
		return nil, nil, nil, false
	}

	valid, rejected = solanainfra.SanitizeAddresses(req.Addresses)
	if len(valid) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:             "no valid addresses in request",
			RejectedAddresses: rejected,
		})
		return nil, nil, nil, false
	}

	requested = make([]string, 0, len(req.Addresses))
	for _, address := range req.Addresses {
		requested = append(requested, strings.TrimSpace(address))
	}
	return requested, valid, rejected, true
}

// GetPortfoliosHandler builds portfolios for the batch of addresses in the
// request body. The result carries one portfolio per requested address in
// input order: addresses that fail validation degrade to zero-valued
// entries instead of being omitted.
func (h *PortfolioHandler) GetPortfoliosHandler(c *gin.Context) {
	requested, _, rejected, ok := h.parseAddresses(c)
	if !ok {
		return
	}

	portfolios := h.portfolioService.BuildPortfolios(c.Request.Context(), requested)

	response := PortfolioResponse{RejectedAddresses: rejected}
	response.Data.Portfolios = portfolios
	response.StatusMessage = "Portfolios retrieved successfully."
	if len(rejected) > 0 {
		response.StatusMessage = "Portfolios retrieved. Some addresses were rejected."
	}
	c.JSON(http.StatusOK, response)
}

// GetTrackedPortfoliosHandler builds portfolios for the wallet set loaded
// from the tracked-wallets file.
func (h *PortfolioHandler) GetTrackedPortfoliosHandler(c *gin.Context) {
	wallets, err := h.walletProvider.GetWallets()
	if err != nil {
		h.logger.Error("Failed to load tracked wallets", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load tracked wallets"})
		return
	}
	if len(wallets) == 0 {
		c.JSON(http.StatusOK, PortfolioResponse{
			StatusMessage: "No tracked wallets configured.",
		})
		return
	}

	addresses := make([]string, 0, len(wallets))
	for _, wallet := range wallets {
		addresses = append(addresses, wallet.Address)
	}

	portfolios := h.portfolioService.BuildPortfolios(c.Request.Context(), addresses)

	response := PortfolioResponse{}
	response.Data.Portfolios = portfolios
	response.StatusMessage = "Portfolios retrieved successfully."
	c.JSON(http.StatusOK, response)
}

// GetNFTsHandler collects resolved NFTs across the batch of addresses.
func (h *PortfolioHandler) GetNFTsHandler(c *gin.Context) {
	_, valid, rejected, ok := h.parseAddresses(c)
	if !ok {
		return
	}

	nfts := h.nftService.CollectNFTs(c.Request.Context(), valid)

	response := NFTsResponse{RejectedAddresses: rejected}
	response.Data.NFTs = nfts
	response.StatusMessage = "NFTs retrieved successfully."
	c.JSON(http.StatusOK, response)
}

// GetSummaryHandler builds portfolios for the batch and derives the
// aggregate summary over them.
func (h *PortfolioHandler) GetSummaryHandler(c *gin.Context) {
	_, valid, rejected, ok := h.parseAddresses(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	portfolios := h.portfolioService.BuildPortfolios(ctx, valid)

	var nfts []entity.NFTAsset
	for _, portfolio := range portfolios {
		nfts = append(nfts, portfolio.NFTs...)
	}

	summary := h.summaryService.Summarize(portfolios, nfts)

	response := SummaryResponse{RejectedAddresses: rejected}
	response.Data.Summary = summary
	response.StatusMessage = "Summary computed successfully."
	c.JSON(http.StatusOK, response)
}

// BuildBurnTransactionHandler builds the unsigned burn-and-close
// transaction for the request body.
func (h *PortfolioHandler) BuildBurnTransactionHandler(c *gin.Context) {
	var req entity.BurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	tx, err := h.burnService.BuildBurnTransaction(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("Burn transaction build failed", "payer", req.Payer, "error", err)
		status := http.StatusBadRequest
		if errors.Is(err, port.ErrChainUnavailable) {
			status = http.StatusBadGateway
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	response := BurnResponse{}
	response.Data.Transaction = *tx
	response.StatusMessage = "Burn transaction built successfully."
	c.JSON(http.StatusOK, response)
}

// HealthHandler reports liveness.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
