// ABOUTME: Sizing override flags and YAML request files shared by plan and compare
// ABOUTME: Only flags set on the command line replace values from a file

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// changedFunc reports whether a flag was set explicitly
type changedFunc func(name string) bool

// overrideFlags holds one flag value per planner override
type overrideFlags struct {
	workerCount       int
	containerMemoryMB int
	reservationMB     int
	cpuUnits          int
	replicaMin        int
	replicaMax        int
	nodeMin           int
	nodeMax           int
}

func (o *overrideFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&o.workerCount, "workers", 0, "Gunicorn workers per container (1-16, default derived from memory)")
	f.IntVar(&o.containerMemoryMB, "container-memory-mb", 0, "Container memory hard limit in MB (default 512)")
	f.IntVar(&o.reservationMB, "memory-reservation-mb", 0, "Container memory soft limit in MB (default 3/4 of the hard limit)")
	f.IntVar(&o.cpuUnits, "cpu-units", 0, "Container CPU reservation in units, 1024 per vCPU (min 128)")
	f.IntVar(&o.replicaMin, "replica-min", 0, "Minimum replicas (default tasks per node x node min)")
	f.IntVar(&o.replicaMax, "replica-max", 0, "Maximum replicas (default 2 x replica min)")
	f.IntVar(&o.nodeMin, "node-min", 0, "Minimum nodes (default subnet count)")
	f.IntVar(&o.nodeMax, "node-max", 0, "Maximum nodes (default unset)")
}

// apply copies every explicitly set flag into dst
func (o *overrideFlags) apply(changed changedFunc, dst *models.SizingOverrides) {
	for _, f := range []struct {
		name string
		src  int
		dst  **int
	}{
		{"workers", o.workerCount, &dst.WorkerCount},
		{"container-memory-mb", o.containerMemoryMB, &dst.ContainerMemoryMB},
		{"memory-reservation-mb", o.reservationMB, &dst.ContainerMemoryReservationMB},
		{"cpu-units", o.cpuUnits, &dst.ContainerCPUUnits},
		{"replica-min", o.replicaMin, &dst.ReplicaMin},
		{"replica-max", o.replicaMax, &dst.ReplicaMax},
		{"node-min", o.nodeMin, &dst.NodeMin},
		{"node-max", o.nodeMax, &dst.NodeMax},
	} {
		if changed(f.name) {
			*f.dst = models.IntPtr(f.src)
		}
	}
}

// loadYAMLFile decodes a request file. Unknown keys are rejected so a
// misspelled override is not silently ignored.
func loadYAMLFile(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
