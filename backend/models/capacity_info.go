// ABOUTME: Operator-facing capacity report built from a planning result
// ABOUTME: Mirrors the capacity summary published alongside the deployed service

package models

import (
	"fmt"
	"strings"
)

// CapacityInfo summarises how one node type is packed with containers
type CapacityInfo struct {
	InstanceType               string  `json:"instance_type" yaml:"instance_type"`
	InstanceVCPU               int     `json:"instance_vcpu" yaml:"instance_vcpu"`
	InstanceRAMMB              int     `json:"instance_ram_mb" yaml:"instance_ram_mb"`
	SystemOverheadMB           int     `json:"system_overhead_mb" yaml:"system_overhead_mb"`
	PageCacheFloorMB           int     `json:"page_cache_floor_mb" yaml:"page_cache_floor_mb"`
	AvailableRAMMBPerInstance  int     `json:"available_ram_mb_per_instance" yaml:"available_ram_mb_per_instance"`
	AvailableCPUUnits          int     `json:"available_cpu_units" yaml:"available_cpu_units"`
	ContainerMemoryMB          int     `json:"container_memory_mb" yaml:"container_memory_mb"`
	ContainerMemoryReservation int     `json:"container_memory_reservation_mb" yaml:"container_memory_reservation_mb"`
	ContainerCPUUnits          int     `json:"container_cpu_units" yaml:"container_cpu_units"`
	ContainerVCPU              float64 `json:"container_vcpu" yaml:"container_vcpu"`
	WorkersPerContainer        int     `json:"workers_per_container" yaml:"workers_per_container"`
	TasksPerInstanceByMemory   int     `json:"tasks_per_instance_by_memory" yaml:"tasks_per_instance_by_memory"`
	TasksPerInstanceByCPU      int     `json:"tasks_per_instance_by_cpu" yaml:"tasks_per_instance_by_cpu"`
	TasksPerInstance           int     `json:"tasks_per_instance" yaml:"tasks_per_instance"`
	BindingConstraint          string  `json:"binding_constraint" yaml:"binding_constraint"`
	InstanceCount              int     `json:"instance_count" yaml:"instance_count"`
	AutoCalculatedTaskMin      int     `json:"auto_calculated_task_min_count" yaml:"auto_calculated_task_min_count"`
	ActualTaskMin              int     `json:"actual_task_min_count" yaml:"actual_task_min_count"`
	ActualTaskMax              int     `json:"actual_task_max_count" yaml:"actual_task_max_count"`
}

// BindingLabel returns the constraint in the form shown on dashboards
func (c CapacityInfo) BindingLabel() string {
	switch c.BindingConstraint {
	case BindingCPU:
		return "CPU"
	case BindingMemory:
		return "memory"
	case BindingBalanced:
		return "CPU and memory"
	}
	return "unknown"
}

// Annotations returns the text lines attached to monitoring dashboards.
// Nothing is computed from them downstream.
func (c CapacityInfo) Annotations() []string {
	return []string{
		fmt.Sprintf("binding constraint: %s", c.BindingLabel()),
		fmt.Sprintf("tasks per node: %d", c.TasksPerInstance),
		fmt.Sprintf("cpu reservation: %d units (%.2f vCPU)", c.ContainerCPUUnits, c.ContainerVCPU),
		fmt.Sprintf("memory reservation: %d MB (limit %d MB)", c.ContainerMemoryReservation, c.ContainerMemoryMB),
		fmt.Sprintf("workers per container: %d", c.WorkersPerContainer),
		fmt.Sprintf("task count: %d-%d on %d nodes", c.ActualTaskMin, c.ActualTaskMax, c.InstanceCount),
	}
}

// Summary joins the annotations into one human-readable sentence block
func (c CapacityInfo) Summary() string {
	name := c.InstanceType
	if name == "" {
		name = fmt.Sprintf("%d vCPU / %d MB", c.InstanceVCPU, c.InstanceRAMMB)
	}
	return fmt.Sprintf("%s: %s.", name, strings.Join(c.Annotations(), ", "))
}
