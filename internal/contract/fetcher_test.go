package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereal-go/ethereal/internal/cache"
)

var (
	proxyAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	implAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

const proxyABI = `[
	{"name":"implementation","type":"function","stateMutability":"view",
		"inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"name":"Upgraded","type":"event","inputs":[{"name":"implementation","type":"address","indexed":true}]}
]`

// explorerServer serves getabi responses from a per-address ABI map.
func explorerServer(t *testing.T, abis map[common.Address]string) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "contract", r.URL.Query().Get("module"))
		assert.Equal(t, "getabi", r.URL.Query().Get("action"))

		addr := common.HexToAddress(r.URL.Query().Get("address"))
		abi, ok := abis[addr]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":"Contract source code not verified"}`)
			return
		}
		resp, _ := json.Marshal(map[string]string{"status": "1", "message": "OK", "result": abi})
		w.Write(resp)
	}))
	return srv, &hits
}

// fakeState stubs the proxy-resolution chain reads.
type fakeState struct {
	callResult []byte
	callErr    error
	slotWord   []byte
	slotErr    error
}

func (s *fakeState) CallContract(context.Context, ethereum.CallMsg) ([]byte, error) {
	return s.callResult, s.callErr
}

func (s *fakeState) StorageAt(context.Context, common.Address, common.Hash) ([]byte, error) {
	return s.slotWord, s.slotErr
}

func TestFetch(t *testing.T) {
	srv, _ := explorerServer(t, map[common.Address]string{implAddr: erc20ABI})
	defer srv.Close()

	f := NewFetcher(1, "key", WithBaseURL(srv.URL))
	abi, err := f.Fetch(context.Background(), implAddr)
	require.NoError(t, err)
	assert.Len(t, abi.Entries, 3)
}

func TestFetchUnverified(t *testing.T) {
	srv, _ := explorerServer(t, nil)
	defer srv.Close()

	f := NewFetcher(1, "key", WithBaseURL(srv.URL))
	_, err := f.Fetch(context.Background(), implAddr)
	assert.ErrorIs(t, err, ErrABIUnavailable)
	assert.Contains(t, err.Error(), "not verified")
}

func TestFetchCached(t *testing.T) {
	srv, hits := explorerServer(t, map[common.Address]string{implAddr: erc20ABI})
	defer srv.Close()

	f := NewFetcher(1, "key", WithBaseURL(srv.URL), WithCache(cache.New(t.TempDir())))
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), implAddr)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, *hits, "repeat fetches are served from cache")
}

func TestResolveNonProxy(t *testing.T) {
	srv, _ := explorerServer(t, map[common.Address]string{implAddr: erc20ABI})
	defer srv.Close()

	f := NewFetcher(1, "key", WithBaseURL(srv.URL))
	abi, err := f.Resolve(context.Background(), implAddr, &fakeState{})
	require.NoError(t, err)
	assert.Len(t, abi.Entries, 3, "non-proxy ABIs skip chain reads entirely")
}

func TestResolveProxyViaCall(t *testing.T) {
	srv, _ := explorerServer(t, map[common.Address]string{
		proxyAddr: proxyABI,
		implAddr:  erc20ABI,
	})
	defer srv.Close()

	state := &fakeState{callResult: common.LeftPadBytes(implAddr.Bytes(), 32)}
	f := NewFetcher(1, "key", WithBaseURL(srv.URL))

	abi, err := f.Resolve(context.Background(), proxyAddr, state)
	require.NoError(t, err)
	_, ok := abi.EventByName("Transfer")
	assert.True(t, ok, "resolved ABI is the implementation's")
}

func TestResolveProxyViaStorageSlot(t *testing.T) {
	srv, _ := explorerServer(t, map[common.Address]string{
		proxyAddr: proxyABI,
		implAddr:  erc20ABI,
	})
	defer srv.Close()

	// Transparent proxies revert implementation() for non-admin callers.
	state := &fakeState{
		callErr:  errors.New("execution reverted"),
		slotWord: common.LeftPadBytes(implAddr.Bytes(), 32),
	}
	f := NewFetcher(1, "key", WithBaseURL(srv.URL))

	abi, err := f.Resolve(context.Background(), proxyAddr, state)
	require.NoError(t, err)
	_, ok := abi.EventByName("Transfer")
	assert.True(t, ok)
}

func TestResolveProxyZeroImplementationKeepsProxyABI(t *testing.T) {
	srv, _ := explorerServer(t, map[common.Address]string{proxyAddr: proxyABI})
	defer srv.Close()

	state := &fakeState{
		callErr:  errors.New("execution reverted"),
		slotWord: make([]byte, 32),
	}
	f := NewFetcher(1, "key", WithBaseURL(srv.URL))

	abi, err := f.Resolve(context.Background(), proxyAddr, state)
	require.NoError(t, err)
	_, ok := abi.EventByName("Upgraded")
	assert.True(t, ok)
}

func TestResolveProxyResolutionFailureFallsBack(t *testing.T) {
	srv, _ := explorerServer(t, map[common.Address]string{proxyAddr: proxyABI})
	defer srv.Close()

	state := &fakeState{
		callErr: errors.New("execution reverted"),
		slotErr: errors.New("rpc: connection refused"),
	}
	f := NewFetcher(1, "key", WithBaseURL(srv.URL))

	abi, err := f.Resolve(context.Background(), proxyAddr, state)
	require.NoError(t, err, "unresolvable proxies fall back to the proxy ABI")
	_, ok := abi.EventByName("Upgraded")
	assert.True(t, ok)
}
