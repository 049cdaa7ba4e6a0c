/*
Copyright 2024 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexandremahdhaoui/warden/pkg/inventory"
	"github.com/alexandremahdhaoui/warden/pkg/topology"
	"github.com/alexandremahdhaoui/warden/pkg/types"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")

	errListVMIDs    = errors.New("listing vm ids")
	errGetVM        = errors.New("getting vm")
	errGetTopology  = errors.New("getting topology")
	errBuildRequest = errors.New("building request")
	errDecodeBody   = errors.New("decoding response body")
)

const maxErrorBody = 512

// --------------------------------------------------- CONSTRUCTORS ------------------------------------------------- //

var (
	_ inventory.Source = (*HTTPClient)(nil)
	_ topology.Source  = (*HTTPClient)(nil)
)

// HTTPClient talks to the REST API of a remote inventory service:
//
//	GET {baseURL}/api/v1/apps/{appID}/vms       -> ["<vm id>", ...]
//	GET {baseURL}/api/v1/apps/{appID}/vms/{id}  -> VM
//	GET {baseURL}/api/v1/apps/{appID}/topology  -> TopologySpec
type HTTPClient struct {
	baseURL string
	appID   string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPClient returns an HTTPClient. Every request is bounded by timeout; a zero timeout only relies
// on the context of the caller.
func NewHTTPClient(baseURL, appID string, timeout time.Duration, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		appID:   appID,
		timeout: timeout,
		client:  client,
	}
}

// --------------------------------------------- CONCRETE IMPLEMENTATION -------------------------------------------- //

// ListVMIDs implements inventory.Source.
func (c *HTTPClient) ListVMIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.get(ctx, &ids, "vms"); err != nil {
		return nil, errors.Join(err, errListVMIDs)
	}

	return ids, nil
}

// vmResponse is the wire form of a VM. Unknown statuses are mapped to UNKNOWN.
type vmResponse struct {
	ID              string `json:"id"`
	Hostname        string `json:"hostname"`
	PhysicalHostID  string `json:"physicalHostID"`
	PhysicalStoreID string `json:"physicalStoreID"`
	Status          string `json:"status"`
}

// GetVM implements inventory.Source.
func (c *HTTPClient) GetVM(ctx context.Context, id string) (types.VM, error) {
	var resp vmResponse
	if err := c.get(ctx, &resp, "vms", id); err != nil {
		return types.VM{}, errors.Join(fmt.Errorf("id=%s", id), err, errGetVM)
	}

	return types.VM{
		ID:              resp.ID,
		Hostname:        resp.Hostname,
		PhysicalHostID:  resp.PhysicalHostID,
		PhysicalStoreID: resp.PhysicalStoreID,
		Status:          types.ParseVMStatus(resp.Status),
	}, nil
}

// GetTopology implements topology.Source.
func (c *HTTPClient) GetTopology(ctx context.Context) (*types.Topology, error) {
	var spec types.TopologySpec
	if err := c.get(ctx, &spec, "topology"); err != nil {
		return nil, errors.Join(err, errGetTopology)
	}

	root, err := types.BuildTopology(spec)
	if err != nil {
		return nil, errors.Join(err, errGetTopology)
	}

	return root, nil
}

func (c *HTTPClient) get(ctx context.Context, out any, path ...string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u, err := url.JoinPath(c.baseURL, append([]string{"api", "v1", "apps", c.appID}, path...)...)
	if err != nil {
		return errors.Join(err, errBuildRequest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Join(err, errBuildRequest)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.Join(
			fmt.Errorf("url=%s status=%d body=%q", u, resp.StatusCode, strings.TrimSpace(string(body))),
			ErrUnexpectedStatus)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(err, errDecodeBody)
	}

	return nil
}
