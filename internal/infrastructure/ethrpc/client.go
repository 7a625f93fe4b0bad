package ethrpc

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// Client is a node connection. It satisfies bind.ContractBackend and
// bind.DeployBackend through the embedded ethclient.
type Client struct {
	*ethclient.Client
	url string
}

type Config struct {
	URL string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rpc url is required")
	}
	client, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", cfg.URL)
	}
	return &Client{Client: client, url: cfg.URL}, nil
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.BlockNumber(ctx)
}

// FetchLogs returns the logs emitted by address in [fromBlock, toBlock].
// A nil bound means genesis for fromBlock and latest for toBlock.
func (c *Client) FetchLogs(ctx context.Context, address common.Address, fromBlock, toBlock *uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{address},
	}
	if fromBlock != nil {
		query.FromBlock = new(big.Int).SetUint64(*fromBlock)
	}
	if toBlock != nil {
		query.ToBlock = new(big.Int).SetUint64(*toBlock)
	}
	return c.FilterLogs(ctx, query)
}
