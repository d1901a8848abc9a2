package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"archaur/internal/core"
	"archaur/internal/ports"
	"archaur/internal/types"
)

// maxQueryBytes bounds the encoded query string of one RPC request.
// Requests are chunked at this size, matching the metadata
// collaborator's documented request-size budget.
const maxQueryBytes = 8000

type aurRPCPackage struct {
	Name         string   `json:"Name"`
	Version      string   `json:"Version"`
	PackageBase  string   `json:"PackageBase"`
	Depends      []string `json:"Depends"`
	MakeDepends  []string `json:"MakeDepends"`
	CheckDepends []string `json:"CheckDepends"`
	Provides     []string `json:"Provides"`
	Conflicts    []string `json:"Conflicts"`
	Replaces     []string `json:"Replaces"`
}

type aurRPCResponse struct {
	Type    string          `json:"type"`
	Results []aurRPCPackage `json:"results"`
	Error   string          `json:"error"`
}

// AurClientAdapter queries a source-repository metadata RPC endpoint
// (AUR-shaped) for package info/search, chunking large name lists and
// retrying transient failures with exponential backoff.
type AurClientAdapter struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAurClientAdapter(baseURL string) AurClientAdapter {
	return AurClientAdapter{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a AurClientAdapter) Info(ctx context.Context, names []string) ([]types.Package, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var out []types.Package
	for _, chunk := range chunkByByteBudget(names, maxQueryBytes) {
		results, err := a.call(ctx, "info", chunk, "")
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}

func (a AurClientAdapter) Search(ctx context.Context, query string) ([]types.Package, error) {
	return a.call(ctx, "search", nil, query)
}

func (a AurClientAdapter) call(ctx context.Context, rpcType string, names []string, query string) ([]types.Package, error) {
	values := url.Values{}
	values.Set("v", "5")
	values.Set("type", rpcType)
	if query != "" {
		values.Set("arg", query)
	}
	for _, name := range names {
		values.Add("arg[]", name)
	}

	var parsed aurRPCResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/rpc?"+values.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := a.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("transient rpc status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("rpc status %d", resp.StatusCode))
		}
		return json.NewDecoder(resp.Body).Decode(&parsed)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("connection problem reaching metadata service").
			WithCause(err)
	}
	if parsed.Error != "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("metadata service error: " + parsed.Error)
	}

	out := make([]types.Package, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, types.NewPackage(types.Package{
			Name:         r.Name,
			Version:      r.Version,
			PkgBase:      r.PackageBase,
			Depends:      splitAll(r.Depends),
			MakeDepends:  splitAll(r.MakeDepends),
			CheckDepends: splitAll(r.CheckDepends),
			Provides:     r.Provides,
			Conflicts:    r.Conflicts,
			Replaces:     r.Replaces,
		}))
	}
	log.Ctx(ctx).Debug().Int("count", len(out)).Str("type", rpcType).Msg("metadata rpc call")
	return out, nil
}

func splitAll(raw []string) []types.Dependency {
	out := make([]types.Dependency, len(raw))
	for i, r := range raw {
		out[i] = core.SplitDep(r)
	}
	return out
}

// chunkByByteBudget groups names into chunks whose url-encoded size
// stays under budget bytes, so a single RPC request never exceeds the
// collaborator's accepted query length.
func chunkByByteBudget(names []string, budget int) [][]string {
	var chunks [][]string
	var current []string
	size := 0
	for _, name := range names {
		cost := len(url.QueryEscape(name)) + len("&arg[]=")
		if size+cost > budget && len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			size = 0
		}
		current = append(current, name)
		size += cost
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

var _ ports.AurMetadataPort = AurClientAdapter{}
