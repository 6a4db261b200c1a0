package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/metrics"
	"market_aggregator/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	base64JSONPrefix = "data:application/json;base64,"
	utf8JSONPrefix   = "data:application/json;utf8,"
	plainJSONPrefix  = "data:application/json,"
)

// MetadataResolver turns token URIs into parsed metadata documents.
type MetadataResolver struct {
	fetcher port.MetadataFetcher
	gateway string
	logger  port.Logger
}

// NewMetadataResolver creates a resolver. An empty gateway uses the public IPFS gateway.
func NewMetadataResolver(fetcher port.MetadataFetcher, ipfsGateway string, l port.Logger) *MetadataResolver {
	if ipfsGateway == "" {
		ipfsGateway = utils.DefaultIPFSGateway
	}
	return &MetadataResolver{fetcher: fetcher, gateway: ipfsGateway, logger: l}
}

// FetchMetadata resolves tokenURI.
// Inline JSON is decoded without a network call and a malformed payload is an error.
// Remote documents that cannot be fetched or parsed yield def.
func (r *MetadataResolver) FetchMetadata(ctx context.Context, tokenURI string, def *entity.AssetMetadata) (*entity.AssetMetadata, error) {
	if inline, ok, err := decodeInline(tokenURI); ok {
		metrics.MetadataFetches.WithLabelValues("inline", metrics.Result(err)).Inc()
		if err != nil {
			return nil, err
		}
		return inline, nil
	}

	if strings.TrimSpace(tokenURI) == "" {
		return def, nil
	}

	target := utils.ContentURIToURL(tokenURI, r.gateway)
	body, err := r.fetcher.Fetch(ctx, target)
	metrics.MetadataFetches.WithLabelValues("http", metrics.Result(err)).Inc()
	if err != nil {
		r.logger.Warn("Metadata fetch failed, using default", "url", target, "error", err)
		return def, nil
	}

	var meta entity.AssetMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		r.logger.Warn("Metadata document is not valid JSON, using default", "url", target, "error", err)
		return def, nil
	}
	return &meta, nil
}

// decodeInline handles data: URIs. The second result is false when tokenURI is not inline JSON.
func decodeInline(tokenURI string) (*entity.AssetMetadata, bool, error) {
	var payload []byte
	switch {
	case strings.HasPrefix(tokenURI, base64JSONPrefix):
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(tokenURI[len(base64JSONPrefix):]))
		if err != nil {
			return nil, true, fmt.Errorf("%w: %v", entity.ErrMalformedTokenURI, err)
		}
		payload = raw
	case strings.HasPrefix(tokenURI, utf8JSONPrefix), strings.HasPrefix(tokenURI, plainJSONPrefix):
		raw := tokenURI[strings.Index(tokenURI, ",")+1:]
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
		payload = []byte(raw)
	default:
		return nil, false, nil
	}

	var meta entity.AssetMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return nil, true, fmt.Errorf("%w: %v", entity.ErrMalformedTokenURI, err)
	}
	return &meta, true, nil
}
