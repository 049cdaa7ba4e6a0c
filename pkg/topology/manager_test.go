//go:build unit

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

package topology_test

import (
	"context"
	"testing"

	"github.com/alexandremahdhaoui/warden/internal/util/mocks/mocktopology"
	"github.com/alexandremahdhaoui/warden/pkg/topology"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTopology(t *testing.T) *types.Topology {
	t.Helper()

	root, err := types.BuildTopology(types.TopologySpec{
		DataCenters: []types.DataCenterSpec{{
			ID: "dc-1",
			Racks: []types.RackSpec{
				{ID: "rack-1", Hosts: []types.HostSpec{{ID: "host-1"}, {ID: "host-2"}}},
				{ID: "rack-2", Hosts: []types.HostSpec{{ID: "host-3"}}},
			},
		}},
	})
	require.NoError(t, err)

	return root
}

func TestManager(t *testing.T) {
	var (
		ctx     context.Context
		source  *mocktopology.MockSource
		manager *topology.Manager
	)

	setup := func(t *testing.T) {
		t.Helper()

		ctx = context.Background()
		source = mocktopology.NewMockSource(t)
		manager = topology.NewManager(source, topology.WithLogger(logr.Discard()))
	}

	t.Run("InitiallyEmpty", func(t *testing.T) {
		setup(t)

		require.NotNil(t, manager.Root())
		assert.Zero(t, manager.Root().Len())
		assert.Equal(t, topology.IDUnknown, manager.RackIDForHost("host-1"))
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			setup(t)

			root := newTopology(t)
			source.EXPECT().GetTopology(ctx).Return(root, nil).Once()

			assert.True(t, manager.Refresh(ctx))
			assert.Same(t, root, manager.Root())
		})

		t.Run("ErrorKeepsPrevious", func(t *testing.T) {
			setup(t)

			root := newTopology(t)
			source.EXPECT().GetTopology(ctx).Return(root, nil).Once()
			require.True(t, manager.Refresh(ctx))

			source.EXPECT().GetTopology(ctx).Return(nil, assert.AnError).Once()
			assert.False(t, manager.Refresh(ctx))
			assert.Same(t, root, manager.Root())
		})

		t.Run("NilKeepsPrevious", func(t *testing.T) {
			setup(t)

			root := newTopology(t)
			source.EXPECT().GetTopology(ctx).Return(root, nil).Once()
			require.True(t, manager.Refresh(ctx))

			source.EXPECT().GetTopology(ctx).Return(nil, nil).Once()
			assert.False(t, manager.Refresh(ctx))
			assert.Same(t, root, manager.Root())
		})
	})

	t.Run("Lookups", func(t *testing.T) {
		setup(t)

		source.EXPECT().GetTopology(ctx).Return(newTopology(t), nil).Once()
		require.True(t, manager.Refresh(ctx))

		host, ok := manager.HostByID("host-3")
		require.True(t, ok)
		assert.Equal(t, types.HostKind, host.Kind)
		assert.Equal(t, "rack-2", host.Parent)

		rack, ok := manager.RackByID("rack-1")
		require.True(t, ok)
		assert.Equal(t, []string{"host-1", "host-2"}, rack.Children)

		dc, ok := manager.DataCenterByID("dc-1")
		require.True(t, ok)
		assert.Equal(t, []string{"rack-1", "rack-2"}, dc.Children)

		_, ok = manager.HostByID("rack-1")
		assert.False(t, ok)

		assert.Equal(t, "rack-2", manager.RackIDForHost("host-3"))
		assert.Equal(t, "dc-1", manager.DataCenterIDForHost("host-3"))
		assert.Equal(t, topology.IDUnknown, manager.RackIDForHost("unknown"))
		assert.Equal(t, topology.IDUnknown, manager.DataCenterIDForHost("unknown"))
	})
}
