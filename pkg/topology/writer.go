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

package topology

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexandremahdhaoui/warden/pkg/types"
)

var errWriteTopology = errors.New("writing topology file")

// Writer writes, for every VM hosted on a physical host of the topology, one line mapping the VM's
// hostname to its "/<data center>/<rack>/<host>" location.
type Writer struct {
	path string
}

// NewWriter returns a Writer truncating and writing the file at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the path of the written file.
func (w *Writer) Path() string {
	return w.path
}

// Write writes the locations of vms on root to the Writer's file.
func (w *Writer) Write(root *types.Topology, vms []*types.VM) error {
	buf := new(bytes.Buffer)
	WriteTo(buf, root, vms)

	if err := os.WriteFile(w.path, buf.Bytes(), 0o644); err != nil {
		return errors.Join(err, errWriteTopology)
	}

	return nil
}

// WriteTo writes the locations of vms on root to out. VMs whose physical host is not part of root are
// skipped.
func WriteTo(out io.Writer, root *types.Topology, vms []*types.VM) {
	for _, vm := range vms {
		host, ok := root.Host(vm.PhysicalHostID)
		if !ok {
			continue
		}

		rack, _ := root.Rack(host.Parent)
		_, _ = fmt.Fprintf(out, "%s\t/%s/%s/%s\n", vm.Hostname, rack.Parent, rack.ID, host.ID)
	}
}
