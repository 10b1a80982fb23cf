// ABOUTME: Builds operator-facing capacity reports and orchestration parameters
// ABOUTME: Turns a planning result into container, service, and node group settings

package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/markalston/pypiserver-capacity/backend/models"
)

// Container runtime settings for the package-index server
const (
	ContainerPort        = 8080
	WorkersEnvVar        = "GUNICORN_WORKERS"
	HealthCheckTimeout   = 5
	HealthCheckInterval  = 30
	HealthCheckRetries   = 3
	HealthCheckStartSecs = 60
)

// NewCapacityInfo reports how the planned containers pack onto one node
func NewCapacityInfo(profile models.InstanceProfile, sizing models.DerivedSizing) models.CapacityInfo {
	return models.CapacityInfo{
		InstanceType:               profile.InstanceType,
		InstanceVCPU:               profile.VCPUCount,
		InstanceRAMMB:              profile.MemoryMB,
		SystemOverheadMB:           SystemOverheadMB,
		PageCacheFloorMB:           PageCacheFloorMB,
		AvailableRAMMBPerInstance:  sizing.AvailableMemoryMB,
		AvailableCPUUnits:          sizing.AvailableCPUUnits,
		ContainerMemoryMB:          sizing.ContainerMemoryMB,
		ContainerMemoryReservation: sizing.ContainerMemoryReservationMB,
		ContainerCPUUnits:          sizing.ContainerCPUUnits,
		ContainerVCPU:              float64(sizing.ContainerCPUUnits) / CPUUnitsPerVCPU,
		WorkersPerContainer:        sizing.WorkerCount,
		TasksPerInstanceByMemory:   sizing.NodeTaskCapacityByMemory,
		TasksPerInstanceByCPU:      sizing.NodeTaskCapacityByCPU,
		TasksPerInstance:           sizing.NodeTaskCapacity,
		BindingConstraint:          sizing.BindingConstraint,
		InstanceCount:              sizing.NodeMin,
		AutoCalculatedTaskMin:      sizing.AutoReplicaMin,
		ActualTaskMin:              sizing.ReplicaMin,
		ActualTaskMax:              sizing.ReplicaMax,
	}
}

// BuildTaskParameters renders the values the orchestration layer applies.
// The worker count reaches the server process through its environment.
func BuildTaskParameters(containerName string, profile models.InstanceProfile, sizing models.DerivedSizing) models.TaskParameters {
	if containerName == "" {
		containerName = "pypiserver"
	}

	return models.TaskParameters{
		Container: models.ContainerParameters{
			Name:              containerName,
			CPU:               sizing.ContainerCPUUnits,
			Memory:            sizing.ContainerMemoryMB,
			MemoryReservation: sizing.ContainerMemoryReservationMB,
			Environment: []models.KeyValuePair{
				{Name: WorkersEnvVar, Value: strconv.Itoa(sizing.WorkerCount)},
			},
			PortMappings: []models.PortMapping{
				{ContainerPort: ContainerPort, Protocol: "tcp"},
			},
			HealthCheck: models.HealthCheck{
				Command: []string{
					"CMD", "pypi-capacity", "probe",
					"--port", strconv.Itoa(ContainerPort),
					"--timeout", strconv.Itoa(HealthCheckTimeout) + "s",
				},
				Interval:    HealthCheckInterval,
				Timeout:     HealthCheckTimeout,
				Retries:     HealthCheckRetries,
				StartPeriod: HealthCheckStartSecs,
			},
		},
		Service: models.ServiceParameters{
			DesiredCount: sizing.ReplicaMin,
			MinCapacity:  sizing.ReplicaMin,
			MaxCapacity:  sizing.ReplicaMax,
		},
		ScalingGroup: models.ScalingGroupParameters{
			InstanceType: profile.InstanceType,
			MinSize:      sizing.NodeMin,
			MaxSize:      sizing.NodeMax,
		},
		Annotations: NewCapacityInfo(profile, sizing).Annotations(),
	}
}

// BuildPlanResponse bundles a planning result with its derived reports
func BuildPlanResponse(profile models.InstanceProfile, sizing models.DerivedSizing) models.PlanResponse {
	return models.PlanResponse{
		Profile:        profile,
		Sizing:         sizing,
		CapacityInfo:   NewCapacityInfo(profile, sizing),
		TaskParameters: BuildTaskParameters("", profile, sizing),
	}
}

// ErrNoInstance is returned for a plan request naming no node shape
var ErrNoInstance = errors.New("instance_type or instance is required")

// ResolveProfile picks the node shape of a plan request. An inline instance
// wins over a catalog name; the name still labels the inline shape.
func ResolveProfile(ctx context.Context, lookup InstanceTypeLookup, req models.PlanRequest) (models.InstanceProfile, error) {
	switch {
	case req.Instance != nil:
		profile := *req.Instance
		if profile.InstanceType == "" {
			profile.InstanceType = req.InstanceType
		}
		return profile, nil
	case req.InstanceType != "":
		it, err := lookup.Lookup(ctx, req.InstanceType)
		if err != nil {
			return models.InstanceProfile{}, err
		}
		return it.Profile(), nil
	}
	return models.InstanceProfile{}, ErrNoInstance
}
