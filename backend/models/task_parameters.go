// ABOUTME: Parameters handed to the external orchestration layer
// ABOUTME: Container reservations, service replica bounds, and node group size

package models

// KeyValuePair is one container environment entry
type KeyValuePair struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// PortMapping exposes a container port
type PortMapping struct {
	ContainerPort int    `json:"containerPort" yaml:"containerPort"`
	Protocol      string `json:"protocol" yaml:"protocol"`
}

// HealthCheck describes the container health probe
type HealthCheck struct {
	Command     []string `json:"command" yaml:"command"`
	Interval    int      `json:"interval" yaml:"interval"`
	Timeout     int      `json:"timeout" yaml:"timeout"`
	Retries     int      `json:"retries" yaml:"retries"`
	StartPeriod int      `json:"startPeriod" yaml:"startPeriod"`
}

// ContainerParameters are the per-container reservations and runtime settings
type ContainerParameters struct {
	Name              string         `json:"name" yaml:"name"`
	CPU               int            `json:"cpu" yaml:"cpu"`
	Memory            int            `json:"memory" yaml:"memory"`
	MemoryReservation int            `json:"memoryReservation" yaml:"memoryReservation"`
	Environment       []KeyValuePair `json:"environment" yaml:"environment"`
	PortMappings      []PortMapping  `json:"portMappings" yaml:"portMappings"`
	HealthCheck       HealthCheck    `json:"healthCheck" yaml:"healthCheck"`
}

// ServiceParameters bound the replica count for autoscaling
type ServiceParameters struct {
	DesiredCount int `json:"desired_count" yaml:"desired_count"`
	MinCapacity  int `json:"min_capacity" yaml:"min_capacity"`
	MaxCapacity  int `json:"max_capacity" yaml:"max_capacity"`
}

// ScalingGroupParameters size the node pool
type ScalingGroupParameters struct {
	InstanceType string `json:"instance_type,omitempty" yaml:"instance_type,omitempty"`
	MinSize      int    `json:"min_size" yaml:"min_size"`
	MaxSize      int    `json:"max_size,omitempty" yaml:"max_size,omitempty"`
}

// TaskParameters bundles everything the orchestration layer consumes
type TaskParameters struct {
	Container    ContainerParameters    `json:"container" yaml:"container"`
	Service      ServiceParameters      `json:"service" yaml:"service"`
	ScalingGroup ScalingGroupParameters `json:"scaling_group" yaml:"scaling_group"`
	Annotations  []string               `json:"annotations" yaml:"annotations"`
}

// PlanRequest is the body of POST /api/v1/plan
type PlanRequest struct {
	InstanceType string           `json:"instance_type,omitempty" yaml:"instance_type,omitempty"`
	Instance     *InstanceProfile `json:"instance,omitempty" yaml:"instance,omitempty"`
	Overrides    SizingOverrides  `json:"overrides" yaml:"overrides"`
	SubnetCount  int              `json:"subnet_count" yaml:"subnet_count"`
}

// PlanResponse is the full planning answer
type PlanResponse struct {
	Profile        InstanceProfile `json:"profile" yaml:"profile"`
	Sizing         DerivedSizing   `json:"sizing" yaml:"sizing"`
	CapacityInfo   CapacityInfo    `json:"capacity_info" yaml:"capacity_info"`
	TaskParameters TaskParameters  `json:"task_parameters" yaml:"task_parameters"`
}
