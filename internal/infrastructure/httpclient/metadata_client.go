package httpclient

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// MetadataClient implements port.MetadataFetcher for token URI documents.
type MetadataClient struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewMetadataClient creates a new MetadataClient.
func NewMetadataClient(timeout time.Duration, logger *zap.Logger) *MetadataClient {
	return &MetadataClient{
		client: &fasthttp.Client{
			MaxResponseBodySize: 4 << 20,
		},
		timeout: timeout,
		logger:  logger.Named("MetadataClient"),
	}
}

// Fetch downloads url within the client timeout.
func (c *MetadataClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := doGet(ctx, c.client, url, nil, c.timeout)
	if err != nil {
		c.logger.Debug("Metadata request failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	return body, nil
}
