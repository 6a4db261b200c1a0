package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/infrastructure/network/abis"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"
)

var (
	errCallReverted    = errors.New("call reverted")
	errEmptyReturnData = errors.New("empty return data")
)

// call3 and result3 mirror the Multicall3 Call3 and Result tuples.
type call3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

type result3 struct {
	Success    bool
	ReturnData []byte
}

// EVMClient implements port.ChainClient for EVM-compatible chains.
type EVMClient struct {
	chainID   uint64
	caller    bind.ContractCaller
	ethClient *ethclient.Client // nil when built around a bare caller
	limiter   *rate.Limiter
}

// NewEVMClient dials the chain's RPC URLs in order and returns a client for the first one that answers.
func NewEVMClient(chain entity.Chain, connectionTimeout time.Duration, limiter *rate.Limiter) (*EVMClient, error) {
	if len(chain.RPCURLs) == 0 {
		return nil, fmt.Errorf("no RPC URLs configured for chain %d", chain.ID)
	}

	var lastErr error
	for _, rpcURL := range chain.RPCURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		ethClient, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			c := newEVMClient(chain.ID, ethClient, limiter)
			c.ethClient = ethClient
			return c, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for chain %s: %w", chain.Name, lastErr)
}

func newEVMClient(chainID uint64, caller bind.ContractCaller, limiter *rate.Limiter) *EVMClient {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &EVMClient{chainID: chainID, caller: caller, limiter: limiter}
}

// ChainID returns the id of the chain this client is bound to.
func (c *EVMClient) ChainID() uint64 {
	return c.chainID
}

// CodeAt implements bind.ContractCaller.
func (c *EVMClient) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.caller.CodeAt(ctx, contract, blockNumber)
}

// CallContract implements bind.ContractCaller.
func (c *EVMClient) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.caller.CallContract(ctx, call, blockNumber)
}

// NativeBalanceCall builds a Multicall3 getEthBalance call for account.
func (c *EVMClient) NativeBalanceCall(account string) entity.ContractCall {
	return entity.ContractCall{
		Target: abis.Multicall3Address,
		ABI:    abis.Multicall3,
		Method: "getEthBalance",
		Args:   []any{common.HexToAddress(account)},
	}
}

// NativeBalance reads the native balance with eth_getBalance.
func (c *EVMClient) NativeBalance(ctx context.Context, account string) (*big.Int, error) {
	if c.ethClient == nil {
		return nil, fmt.Errorf("native balance lookup requires an RPC connection")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.ethClient.BalanceAt(ctx, common.HexToAddress(account), nil)
}

// Aggregate bundles calls into one Multicall3 aggregate3 request with allowFailure set on every call.
// Each returned payload is decoded with the ABI of its call. Reverted or undecodable calls are
// reported per result; only a transport or top-level decoding failure is returned as an error.
func (c *EVMClient) Aggregate(ctx context.Context, calls []entity.ContractCall) ([]entity.CallResult, error) {
	if len(calls) == 0 {
		return []entity.CallResult{}, nil
	}

	packed := make([]call3, len(calls))
	for i, call := range calls {
		if call.ABI == nil {
			return nil, fmt.Errorf("call #%d (%s) has no ABI", i, call.Method)
		}
		data, err := call.ABI.Pack(call.Method, call.Args...)
		if err != nil {
			return nil, fmt.Errorf("failed to pack %s call #%d for %s: %w", call.Method, i, call.Target.Hex(), err)
		}
		packed[i] = call3{Target: call.Target, AllowFailure: true, CallData: data}
	}

	input, err := abis.Multicall3.Pack("aggregate3", packed)
	if err != nil {
		return nil, fmt.Errorf("failed to pack aggregate3: %w", err)
	}

	to := abis.Multicall3Address
	raw, err := c.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("aggregate3 call failed on chain %d: %w", c.chainID, err)
	}

	decoded, err := decodeAggregate3(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode aggregate3 response on chain %d: %w", c.chainID, err)
	}

	n := len(decoded)
	if n > len(calls) {
		n = len(calls)
	}
	results := make([]entity.CallResult, n)
	for i := 0; i < n; i++ {
		results[i] = decodeResult(calls[i], decoded[i])
	}
	return results, nil
}

func decodeAggregate3(raw []byte) ([]result3, error) {
	out, err := abis.Multicall3.Unpack("aggregate3", raw)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("aggregate3 returned no values")
	}
	return *abi.ConvertType(out[0], new([]result3)).(*[]result3), nil
}

func decodeResult(call entity.ContractCall, r result3) entity.CallResult {
	if !r.Success {
		return entity.CallResult{Err: fmt.Errorf("%s on %s: %w", call.Method, call.Target.Hex(), errCallReverted)}
	}
	if len(r.ReturnData) == 0 {
		return entity.CallResult{Err: fmt.Errorf("%s on %s: %w", call.Method, call.Target.Hex(), errEmptyReturnData)}
	}
	values, err := call.ABI.Unpack(call.Method, r.ReturnData)
	if err != nil {
		return entity.CallResult{Err: fmt.Errorf("failed to unpack %s result from %s: %w", call.Method, call.Target.Hex(), err)}
	}
	return entity.CallResult{Success: true, Values: values}
}

var _ port.ChainClient = (*EVMClient)(nil)
