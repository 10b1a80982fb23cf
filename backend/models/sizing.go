// ABOUTME: Data models for container and node sizing calculations
// ABOUTME: Instance shape, optional user overrides, and the derived sizing result

package models

// Binding constraint labels. A tie reports "balanced" because both resources bind.
const (
	BindingMemory   = "memory"
	BindingCPU      = "cpu"
	BindingBalanced = "balanced"
)

// InstanceProfile describes the compute node shape a plan is sized for
type InstanceProfile struct {
	InstanceType string `json:"instance_type,omitempty" yaml:"instance_type,omitempty"`
	VCPUCount    int    `json:"vcpu_count" yaml:"vcpu_count"`
	MemoryMB     int    `json:"memory_mb" yaml:"memory_mb"`
}

// SizingOverrides holds user supplied values. A nil field means "derive it".
type SizingOverrides struct {
	WorkerCount                  *int `json:"worker_count,omitempty" yaml:"worker_count,omitempty"`
	ContainerMemoryMB            *int `json:"container_memory_mb,omitempty" yaml:"container_memory_mb,omitempty"`
	ContainerMemoryReservationMB *int `json:"container_memory_reservation_mb,omitempty" yaml:"container_memory_reservation_mb,omitempty"`
	ContainerCPUUnits            *int `json:"container_cpu_units,omitempty" yaml:"container_cpu_units,omitempty"`
	ReplicaMin                   *int `json:"replica_min,omitempty" yaml:"replica_min,omitempty"`
	ReplicaMax                   *int `json:"replica_max,omitempty" yaml:"replica_max,omitempty"`
	NodeMin                      *int `json:"node_min,omitempty" yaml:"node_min,omitempty"`
	NodeMax                      *int `json:"node_max,omitempty" yaml:"node_max,omitempty"`
}

// DerivedSizing is the full result of one planning run
type DerivedSizing struct {
	WorkerCount                  int `json:"worker_count" yaml:"worker_count"`
	ContainerMemoryMB            int `json:"container_memory_mb" yaml:"container_memory_mb"`
	ContainerMemoryReservationMB int `json:"container_memory_reservation_mb" yaml:"container_memory_reservation_mb"`
	ContainerCPUUnits            int `json:"container_cpu_units" yaml:"container_cpu_units"`

	AvailableMemoryMB int `json:"available_memory_mb" yaml:"available_memory_mb"` // node RAM left for tasks
	AvailableCPUUnits int `json:"available_cpu_units" yaml:"available_cpu_units"` // node CPU left for tasks

	NodeTaskCapacityByMemory int    `json:"node_task_capacity_by_memory" yaml:"node_task_capacity_by_memory"`
	NodeTaskCapacityByCPU    int    `json:"node_task_capacity_by_cpu" yaml:"node_task_capacity_by_cpu"`
	NodeTaskCapacity         int    `json:"node_task_capacity" yaml:"node_task_capacity"` // MIN(memory, cpu)
	BindingConstraint        string `json:"binding_constraint" yaml:"binding_constraint"`

	NodeMin int `json:"node_min" yaml:"node_min"`
	NodeMax int `json:"node_max,omitempty" yaml:"node_max,omitempty"` // 0 = orchestration default

	ReplicaMin     int `json:"replica_min" yaml:"replica_min"`
	ReplicaMax     int `json:"replica_max" yaml:"replica_max"`
	AutoReplicaMin int `json:"auto_replica_min" yaml:"auto_replica_min"` // formula value, even when overridden
}

// IntPtr returns a pointer to v, for building overrides in code and tests
func IntPtr(v int) *int {
	return &v
}
