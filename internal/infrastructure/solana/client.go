package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jrpc "github.com/gagliardetto/solana-go/rpc/jsonrpc"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
	"solfolio/internal/pkg/metrics"
	"solfolio/internal/pkg/retry"
)

// DefaultMainnetEndpoint is the public RPC endpoint for Solana mainnet-beta.
const DefaultMainnetEndpoint = "https://api.mainnet-beta.solana.com"

// MetaplexTokenMetadataProgramID is the program ID for the Metaplex Token
// Metadata program.
const MetaplexTokenMetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

// Token2022ProgramID is the program ID of the token-2022 program variant.
const Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"

var (
	metaplexProgramID = solana.MustPublicKeyFromBase58(MetaplexTokenMetadataProgramID)
	token2022Program  = solana.MustPublicKeyFromBase58(Token2022ProgramID)
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client wraps the Solana JSON-RPC client with a shared rate limiter and a
// bounded retry policy for rate-limit responses.
type Client struct {
	rpcClient *rpc.Client
	limiter   *rate.Limiter
	policy    retry.Policy
	log       *zap.Logger
}

var _ port.ChainClient = (*Client)(nil)

// NewClient builds a chain client against the given endpoint. requestsPerSecond
// caps the outbound call rate across all concurrent users of the client.
func NewClient(endpoint string, requestsPerSecond float64, log *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultMainnetEndpoint
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	// a fractional rate would truncate the burst to 0 and starve every Wait
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		rpcClient: rpc.New(endpoint),
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseBackoff: 500 * time.Millisecond,
			Retryable:   isRateLimited,
		},
		log: log,
	}
}

// isRateLimited reports whether err is an upstream 429 response.
func isRateLimited(err error) bool {
	var rpcErr *jrpc.RPCError
	if errors.As(err, &rpcErr) && rpcErr != nil && rpcErr.Code == 429 {
		return true
	}
	var httpErr *jrpc.HTTPError
	return errors.As(err, &httpErr) && httpErr != nil && httpErr.Code == 429
}

// call runs op under the shared rate limiter and the 429 retry policy.
func (c *Client) call(ctx context.Context, method string, op func(ctx context.Context) error) error {
	metrics.RPCRequests.WithLabelValues(method).Inc()

	attempt := 0
	return c.policy.Do(ctx, func(ctx context.Context) error {
		if attempt > 0 {
			metrics.RPCRetries.Inc()
			c.log.Warn("rate limited by rpc, retrying",
				zap.String("method", method),
				zap.Int("attempt", attempt))
		}
		attempt++

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return op(ctx)
	})
}

// GetNativeBalance returns the wallet's SOL balance in lamports.
func (c *Client) GetNativeBalance(ctx context.Context, walletAddress string) (uint64, error) {
	owner, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return 0, fmt.Errorf("invalid wallet address %q: %w", walletAddress, err)
	}

	var lamports uint64
	err = c.call(ctx, "getBalance", func(ctx context.Context) error {
		out, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		lamports = out.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", walletAddress, err)
	}
	return lamports, nil
}

// parsedTokenAccount mirrors the jsonParsed account shape returned by
// getTokenAccountsByOwner.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount   string  `json:"amount"`
				Decimals uint8   `json:"decimals"`
				UIAmount float64 `json:"uiAmount"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// GetTokenAccounts enumerates the wallet's token accounts under both the
// legacy token program and token-2022, fetched concurrently and merged.
func (c *Client) GetTokenAccounts(ctx context.Context, walletAddress string) ([]entity.TokenAccountRecord, error) {
	owner, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %q: %w", walletAddress, err)
	}

	programs := []solana.PublicKey{solana.TokenProgramID, token2022Program}
	perProgram := make([][]entity.TokenAccountRecord, len(programs))

	g, gctx := errgroup.WithContext(ctx)
	for i, programID := range programs {
		i, programID := i, programID
		g.Go(func() error {
			records, err := c.tokenAccountsForProgram(gctx, owner, programID)
			if err != nil {
				return err
			}
			perProgram[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to get token accounts for %s: %w", walletAddress, err)
	}

	merged := make([]entity.TokenAccountRecord, 0, len(perProgram[0])+len(perProgram[1]))
	for _, records := range perProgram {
		merged = append(merged, records...)
	}
	return merged, nil
}

func (c *Client) tokenAccountsForProgram(ctx context.Context, owner, programID solana.PublicKey) ([]entity.TokenAccountRecord, error) {
	config := &rpc.GetTokenAccountsConfig{ProgramId: &programID}
	opts := &rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed}

	var out *rpc.GetTokenAccountsResult
	err := c.call(ctx, "getTokenAccountsByOwner", func(ctx context.Context) error {
		var err error
		out, err = c.rpcClient.GetTokenAccountsByOwner(ctx, owner, config, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	records := make([]entity.TokenAccountRecord, 0, len(out.Value))
	for _, raw := range out.Value {
		tokenAccount := raw.Pubkey.String()

		rawJSON := raw.Account.Data.GetRawJSON()
		if rawJSON == nil {
			c.log.Debug("token account missing parsed data", zap.String("account", tokenAccount))
			continue
		}

		var parsed parsedTokenAccount
		if err := json.Unmarshal(rawJSON, &parsed); err != nil {
			c.log.Debug("failed to decode parsed token account",
				zap.String("account", tokenAccount), zap.Error(err))
			continue
		}

		info := parsed.Parsed.Info
		if info.Mint == "" {
			continue
		}

		records = append(records, entity.TokenAccountRecord{
			Mint:         info.Mint,
			Owner:        owner.String(),
			TokenAccount: tokenAccount,
			RawAmount:    info.TokenAmount.Amount,
			Decimals:     info.TokenAmount.Decimals,
			UIAmount:     info.TokenAmount.UIAmount,
		})
	}
	return records, nil
}

// DeriveMetadataPDA derives the Metaplex token-metadata account address for
// a mint.
func DeriveMetadataPDA(mint solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			metaplexProgramID.Bytes(),
			mint.Bytes(),
		},
		metaplexProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata PDA for mint %s: %w", mint, err)
	}
	return pda, nil
}

// GetMetadataAccounts reads the raw Metaplex metadata account data for up to
// port.MetadataBatchLimit mints in a single getMultipleAccounts round-trip.
// Mints without a metadata account are simply absent from the result.
func (c *Client) GetMetadataAccounts(ctx context.Context, mints []string) (map[string][]byte, error) {
	if len(mints) == 0 {
		return map[string][]byte{}, nil
	}
	if len(mints) > port.MetadataBatchLimit {
		return nil, fmt.Errorf("metadata batch of %d exceeds limit %d", len(mints), port.MetadataBatchLimit)
	}

	pdas := make([]solana.PublicKey, 0, len(mints))
	pdaMint := make([]string, 0, len(mints))
	for _, mintStr := range mints {
		mint, err := solana.PublicKeyFromBase58(mintStr)
		if err != nil {
			c.log.Debug("skipping invalid mint in metadata batch",
				zap.String("mint", mintStr), zap.Error(err))
			continue
		}
		pda, err := DeriveMetadataPDA(mint)
		if err != nil {
			c.log.Debug("skipping underivable metadata PDA",
				zap.String("mint", mintStr), zap.Error(err))
			continue
		}
		pdas = append(pdas, pda)
		pdaMint = append(pdaMint, mintStr)
	}
	if len(pdas) == 0 {
		return map[string][]byte{}, nil
	}

	var out *rpc.GetMultipleAccountsResult
	err := c.call(ctx, "getMultipleAccounts", func(ctx context.Context) error {
		var err error
		out, err = c.rpcClient.GetMultipleAccountsWithOpts(ctx, pdas, &rpc.GetMultipleAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rpc.CommitmentConfirmed,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata accounts: %w", err)
	}

	result := make(map[string][]byte, len(out.Value))
	for i, account := range out.Value {
		if account == nil || account.Data == nil {
			continue
		}
		data := account.Data.GetBinary()
		if len(data) == 0 {
			continue
		}
		result[pdaMint[i]] = data
	}
	return result, nil
}

// MinimumBalanceForRentExemption returns the lamports an account of the given
// byte size must hold to persist on-chain.
func (c *Client) MinimumBalanceForRentExemption(ctx context.Context, accountSize uint64) (uint64, error) {
	var lamports uint64
	err := c.call(ctx, "getMinimumBalanceForRentExemption", func(ctx context.Context) error {
		var err error
		lamports, err = c.rpcClient.GetMinimumBalanceForRentExemption(ctx, accountSize, rpc.CommitmentConfirmed)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get rent exemption for size %d: %w", accountSize, err)
	}
	return lamports, nil
}

// LatestBlockhash returns a recent blockhash and its last valid block height.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	var out *rpc.GetLatestBlockhashResult
	err := c.call(ctx, "getLatestBlockhash", func(ctx context.Context) error {
		var err error
		out, err = c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
		return err
	})
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return out.Value.Blockhash, out.Value.LastValidBlockHeight, nil
}
