package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market_aggregator/internal/domain/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ENSClient implements port.ENSMetadataClient against metadata.ens.domains.
type ENSClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewENSClient creates a new ENSClient.
func NewENSClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ENSClient {
	return &ENSClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("ENSClient"),
	}
}

// URL returns the metadata location of an ENS token on mainnet.
func (c *ENSClient) URL(contract string, tokenID string) string {
	return fmt.Sprintf("%s/mainnet/%s/%s", c.baseURL, contract, tokenID)
}

// Get implements port.ENSMetadataClient.
func (c *ENSClient) Get(ctx context.Context, contract string, tokenID string) (*entity.ENSMetadata, error) {
	requestURL := c.URL(contract, tokenID)
	body, err := doGet(ctx, c.client, requestURL, nil, c.timeout)
	if err != nil {
		c.logger.Warn("ENS metadata request failed", zap.String("url", requestURL), zap.Error(err))
		return nil, err
	}

	var meta entity.ENSMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal ENS metadata for %s: %v", entity.ErrUpstream, tokenID, err)
	}
	return &meta, nil
}
