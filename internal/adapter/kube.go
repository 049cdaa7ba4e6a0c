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
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/alexandremahdhaoui/warden/pkg/topology"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

var errListNodes = errors.New("listing kubernetes nodes")

var _ topology.Source = (*KubeTopology)(nil)

// KubeTopology builds the topology from the Nodes of a Kubernetes cluster: the data center of a node
// is the value of its data center label, its rack the value of its rack label and the host is the
// node itself. Nodes missing one of the labels are not part of the topology.
type KubeTopology struct {
	client          client.Client
	dataCenterLabel string
	rackLabel       string
	log             logr.Logger
}

// NewKubeTopology returns a KubeTopology listing nodes with c.
func NewKubeTopology(c client.Client, dataCenterLabel, rackLabel string) *KubeTopology {
	return &KubeTopology{
		client:          c,
		dataCenterLabel: dataCenterLabel,
		rackLabel:       rackLabel,
		log:             ctrl.Log.WithName("kube-topology"),
	}
}

// GetTopology implements topology.Source.
func (k *KubeTopology) GetTopology(ctx context.Context) (*types.Topology, error) {
	nodes := new(corev1.NodeList)
	if err := k.client.List(ctx, nodes, client.HasLabels{k.dataCenterLabel, k.rackLabel}); err != nil {
		return nil, errors.Join(err, errListNodes)
	}

	slices.SortFunc(nodes.Items, func(a, b corev1.Node) int { return cmp.Compare(a.Name, b.Name) })

	root := types.NewTopology()
	for _, node := range nodes.Items {
		dc, rack := node.Labels[k.dataCenterLabel], node.Labels[k.rackLabel]
		if dc == "" || rack == "" {
			continue
		}

		if _, ok := root.DataCenter(dc); !ok {
			if err := root.AddDataCenter(dc); err != nil {
				return nil, err
			}
		}

		if existing, ok := root.Rack(rack); !ok {
			if err := root.AddRack(dc, rack); err != nil {
				return nil, err
			}
		} else if existing.Parent != dc {
			k.log.Info("Skipping node: rack already belongs to another data center",
				"node", node.Name,
				"rack", rack,
				"dataCenter", dc,
				"expectedDataCenter", existing.Parent)

			continue
		}

		if err := root.AddHost(rack, node.Name); err != nil {
			return nil, err
		}
	}

	return root, nil
}
