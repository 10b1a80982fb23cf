// ABOUTME: Capacity planner for package-index server containers on a node pool
// ABOUTME: Derives workers, reservations, per-node task density, and replica bounds

package services

import (
	"fmt"

	"github.com/markalston/pypiserver-capacity/backend/models"
)

// Empirically tuned sizing constants. They are calibrated so that a 2 vCPU
// node running 512 MB containers with 4 workers packs 3 tasks by both memory
// and CPU; at other shapes the two limits diverge.
const (
	DefaultContainerMemoryMB = 512

	// Headroom assumed per worker process.
	MemoryPerWorkerMB = 128
	MinAutoWorkers    = 2
	MaxAutoWorkers    = 8
	MinWorkerOverride = 1
	MaxWorkerOverride = 16

	// Soft limit defaults to 3/4 of the hard limit.
	ReservationNumerator   = 3
	ReservationDenominator = 4

	CPUUnitsPerWorker    = 150
	CPUUnitsBase         = 40
	CPUUnitsPerVCPU      = 1024
	MinContainerCPUUnits = 128

	// Orchestration agent, telemetry agent, and OS.
	SystemOverheadMB = 300
	// Working set kept free for the shared storage metadata cache. The server
	// runs with a non-caching backend that rescans storage on every request.
	PageCacheFloorMB = 500
	// Reserved by the orchestration agent on every node.
	AgentCPUUnits = 128

	ReplicaBurstFactor = 2

	// Upper bounds on inputs. They sit far above any real node or pool and
	// keep every product in Plan well inside a 64-bit int.
	MaxVCPUCount   = 4096
	MaxMemoryMB    = 1 << 26 // 64 TiB
	MaxSizingValue = 1 << 24
)

// Planner computes container and node pool sizing. It holds no state and is
// safe for concurrent use.
type Planner struct{}

// NewPlanner creates a new planner
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan sizes containers and replica bounds for one node shape. subnetCount is
// the default node pool size when no node_min override is given.
// Either every field is derived or a *models.ConfigError is returned.
func (p *Planner) Plan(instance models.InstanceProfile, overrides models.SizingOverrides, subnetCount int) (models.DerivedSizing, error) {
	if err := validateInstanceProfile(instance); err != nil {
		return models.DerivedSizing{}, err
	}
	if err := validateOverrides(overrides); err != nil {
		return models.DerivedSizing{}, err
	}
	if overrides.NodeMin == nil && (subnetCount <= 0 || subnetCount > MaxSizingValue) {
		return models.DerivedSizing{}, invalidOverride("subnet_count", subnetCount,
			fmt.Sprintf("between 1 and %d when node_min is not set", MaxSizingValue))
	}

	memoryMB := valueOr(overrides.ContainerMemoryMB, DefaultContainerMemoryMB)

	workers := AutoWorkerCount(memoryMB)
	if overrides.WorkerCount != nil {
		workers = *overrides.WorkerCount
	}

	reservation := memoryMB * ReservationNumerator / ReservationDenominator
	if overrides.ContainerMemoryReservationMB != nil {
		reservation = *overrides.ContainerMemoryReservationMB
	}
	if reservation < 1 {
		return models.DerivedSizing{}, invalidOverride("container_memory_mb", memoryMB,
			">= 2 when container_memory_reservation_mb is derived")
	}
	if reservation > memoryMB {
		return models.DerivedSizing{}, inconsistentBounds("container_memory_reservation_mb", reservation,
			fmt.Sprintf("<= container_memory_mb (%d)", memoryMB))
	}

	cpuUnits := workers*CPUUnitsPerWorker + CPUUnitsBase
	if overrides.ContainerCPUUnits != nil {
		cpuUnits = *overrides.ContainerCPUUnits
	}

	availableMemory := instance.MemoryMB - SystemOverheadMB - PageCacheFloorMB
	byMemory := max(1, availableMemory/reservation)

	availableCPU := instance.VCPUCount*CPUUnitsPerVCPU - AgentCPUUnits
	byCPU := max(1, availableCPU/cpuUnits)

	capacity := min(byMemory, byCPU)

	nodeMin := subnetCount
	if overrides.NodeMin != nil {
		nodeMin = *overrides.NodeMin
	}
	nodeMax := valueOr(overrides.NodeMax, 0)
	if nodeMax > 0 && nodeMin > nodeMax {
		return models.DerivedSizing{}, inconsistentBounds("node_min", nodeMin,
			fmt.Sprintf("<= node_max (%d)", nodeMax))
	}

	autoReplicaMin := capacity * nodeMin
	replicaMin := valueOr(overrides.ReplicaMin, autoReplicaMin)
	replicaMax := valueOr(overrides.ReplicaMax, replicaMin*ReplicaBurstFactor)
	if replicaMin > replicaMax {
		return models.DerivedSizing{}, inconsistentBounds("replica_min", replicaMin,
			fmt.Sprintf("<= replica_max (%d)", replicaMax))
	}

	return models.DerivedSizing{
		WorkerCount:                  workers,
		ContainerMemoryMB:            memoryMB,
		ContainerMemoryReservationMB: reservation,
		ContainerCPUUnits:            cpuUnits,
		AvailableMemoryMB:            availableMemory,
		AvailableCPUUnits:            availableCPU,
		NodeTaskCapacityByMemory:     byMemory,
		NodeTaskCapacityByCPU:        byCPU,
		NodeTaskCapacity:             capacity,
		BindingConstraint:            bindingConstraint(byMemory, byCPU),
		NodeMin:                      nodeMin,
		NodeMax:                      nodeMax,
		ReplicaMin:                   replicaMin,
		ReplicaMax:                   replicaMax,
		AutoReplicaMin:               autoReplicaMin,
	}, nil
}

// AutoWorkerCount derives the worker count from the container memory limit
func AutoWorkerCount(containerMemoryMB int) int {
	return min(MaxAutoWorkers, max(MinAutoWorkers, containerMemoryMB/MemoryPerWorkerMB))
}

// bindingConstraint compares the raw capacities; equal values bind together
func bindingConstraint(byMemory, byCPU int) string {
	switch {
	case byMemory < byCPU:
		return models.BindingMemory
	case byCPU < byMemory:
		return models.BindingCPU
	default:
		return models.BindingBalanced
	}
}

func validateInstanceProfile(instance models.InstanceProfile) error {
	for _, f := range []struct {
		name  string
		value int
		limit int
	}{
		{"vcpu_count", instance.VCPUCount, MaxVCPUCount},
		{"memory_mb", instance.MemoryMB, MaxMemoryMB},
	} {
		if f.value <= 0 || f.value > f.limit {
			return &models.ConfigError{
				Kind:       models.KindInvalidInstanceProfile,
				Field:      f.name,
				Value:      f.value,
				Constraint: fmt.Sprintf("between 1 and %d", f.limit),
			}
		}
	}
	return nil
}

// validateOverrides checks each present override on its own. Ordering between
// related values is checked in Plan once defaults are resolved.
func validateOverrides(o models.SizingOverrides) error {
	if o.WorkerCount != nil {
		if w := *o.WorkerCount; w < MinWorkerOverride || w > MaxWorkerOverride {
			return invalidOverride("worker_count", w,
				fmt.Sprintf("between %d and %d", MinWorkerOverride, MaxWorkerOverride))
		}
	}
	if o.ContainerCPUUnits != nil {
		if c := *o.ContainerCPUUnits; c < MinContainerCPUUnits || c > MaxSizingValue {
			return invalidOverride("container_cpu_units", c,
				fmt.Sprintf("between %d and %d", MinContainerCPUUnits, MaxSizingValue))
		}
	}

	for _, f := range []struct {
		name  string
		value *int
	}{
		{"container_memory_mb", o.ContainerMemoryMB},
		{"container_memory_reservation_mb", o.ContainerMemoryReservationMB},
		{"replica_min", o.ReplicaMin},
		{"replica_max", o.ReplicaMax},
		{"node_min", o.NodeMin},
		{"node_max", o.NodeMax},
	} {
		if f.value != nil && (*f.value <= 0 || *f.value > MaxSizingValue) {
			return invalidOverride(f.name, *f.value, fmt.Sprintf("between 1 and %d", MaxSizingValue))
		}
	}
	return nil
}

func invalidOverride(field string, value int, constraint string) *models.ConfigError {
	return &models.ConfigError{
		Kind:       models.KindInvalidOverride,
		Field:      field,
		Value:      value,
		Constraint: constraint,
	}
}

func inconsistentBounds(field string, value int, constraint string) *models.ConfigError {
	return &models.ConfigError{
		Kind:       models.KindInconsistentBounds,
		Field:      field,
		Value:      value,
		Constraint: constraint,
	}
}

func valueOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}
