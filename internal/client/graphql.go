package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GraphQLClient queries chain state through a Xian node's GraphQL endpoint
type GraphQLClient struct {
	endpoint string
	client   *http.Client
}

// NewGraphQLClient creates a new chain GraphQL client
func NewGraphQLClient(endpoint string) *GraphQLClient {
	return &GraphQLClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// post sends one GraphQL query and decodes the response envelope into out
func (c *GraphQLClient) post(ctx context.Context, query string, out any) error {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query chain state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to query chain state: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode chain state: %w", err)
	}
	return nil
}

// stateEdges is the shared edges/node envelope of Xian state queries
type stateEdges struct {
	Edges []struct {
		Node struct {
			Key   string `json:"key"`
			Value any    `json:"value"`
		} `json:"node"`
	} `json:"edges"`
}

// SBTHolders fetches the full SBT holder set from chain state.
// State keys look like "<contract>.sbt_holders:<address>".
func (c *GraphQLClient) SBTHolders(ctx context.Context, contract string) (map[string]struct{}, error) {
	query := fmt.Sprintf(`
	query {
	  allStates(
	    filter: { key: { like: "%s.sbt_holders:%%" } },
	    first: 5000
	  ) {
	    edges { node { key } }
	  }
	}`, contract)

	var resp struct {
		Data struct {
			AllStates stateEdges `json:"allStates"`
		} `json:"data"`
	}
	if err := c.post(ctx, query, &resp); err != nil {
		return nil, err
	}

	holders := make(map[string]struct{})
	for _, edge := range resp.Data.AllStates.Edges {
		// key format: con_sbtxian.sbt_holders:ADDRESS
		if _, addr, ok := strings.Cut(edge.Node.Key, ":"); ok && addr != "" {
			holders[addr] = struct{}{}
		}
	}
	return holders, nil
}

// OnChainTraits fetches the on-chain trait values for one address.
// State keys look like "traits:<address>:<TraitKey>".
func (c *GraphQLClient) OnChainTraits(ctx context.Context, contract, address string) (map[string]any, error) {
	query := fmt.Sprintf(`
	query {
	  contractByName(name: "%s") {
	    state(filter: {
	      key: { like: "traits:%s:%%" }
	    }) {
	      edges { node { key value } }
	    }
	  }
	}`, contract, address)

	var resp struct {
		Data struct {
			ContractByName struct {
				State stateEdges `json:"state"`
			} `json:"contractByName"`
		} `json:"data"`
	}
	if err := c.post(ctx, query, &resp); err != nil {
		return nil, err
	}

	traits := make(map[string]any)
	for _, edge := range resp.Data.ContractByName.State.Edges {
		// key format: traits:address:TraitName
		parts := strings.SplitN(edge.Node.Key, ":", 3)
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		traits[parts[2]] = edge.Node.Value
	}
	return traits, nil
}
