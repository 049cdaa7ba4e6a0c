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
	"errors"
	"fmt"
	"os"

	"github.com/alexandremahdhaoui/warden/pkg/topology"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"sigs.k8s.io/yaml"
)

var errReadTopologyFile = errors.New("reading topology file")

var _ topology.Source = (*FileTopology)(nil)

// FileTopology reads the topology from a YAML or JSON file holding a TopologySpec. The file is read
// again on every call so that edits are picked up by the next refresh.
type FileTopology struct {
	path string
}

// NewFileTopology returns a FileTopology reading the file at path.
func NewFileTopology(path string) *FileTopology {
	return &FileTopology{path: path}
}

// GetTopology implements topology.Source.
func (f *FileTopology) GetTopology(_ context.Context) (*types.Topology, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.Join(err, errReadTopologyFile)
	}

	var spec types.TopologySpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, errors.Join(fmt.Errorf("path=%s", f.path), err, errReadTopologyFile)
	}

	root, err := types.BuildTopology(spec)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("path=%s", f.path), err, errReadTopologyFile)
	}

	return root, nil
}

// NoTopology is a topology.Source returning an empty topology.
type NoTopology struct{}

// GetTopology implements topology.Source.
func (NoTopology) GetTopology(context.Context) (*types.Topology, error) {
	return types.NewTopology(), nil
}
