// ABOUTME: Data models for instance type lookups and candidate comparison
// ABOUTME: Shared by the catalog, the comparator, the HTTP API, and the CLI client

package models

import "errors"

// ErrUnknownInstanceType is returned when no catalog source knows a name
var ErrUnknownInstanceType = errors.New("unknown instance type")

// Catalog source names
const (
	SourceStatic  = "static"
	SourceEC2     = "ec2"
	SourceVSphere = "vsphere"
)

// InstanceType is a resolved node shape with optional pricing
type InstanceType struct {
	Name                 string  `json:"name" yaml:"name"`
	VCPUCount            int     `json:"vcpu_count" yaml:"vcpu_count"`
	MemoryMB             int     `json:"memory_mb" yaml:"memory_mb"`
	OnDemandPricePerHour float64 `json:"on_demand_price_per_hour,omitempty" yaml:"on_demand_price_per_hour,omitempty"`
	Source               string  `json:"source" yaml:"source"`
}

// Profile converts the catalog entry into planner input
func (t InstanceType) Profile() InstanceProfile {
	return InstanceProfile{
		InstanceType: t.Name,
		VCPUCount:    t.VCPUCount,
		MemoryMB:     t.MemoryMB,
	}
}

// CompareRequest asks which candidate node type serves a replica target best
type CompareRequest struct {
	Candidates     []string        `json:"candidates" yaml:"candidates"`
	TargetReplicas int             `json:"target_replicas" yaml:"target_replicas"`
	SubnetCount    int             `json:"subnet_count" yaml:"subnet_count"`
	Overrides      SizingOverrides `json:"overrides" yaml:"overrides"`
}

// CandidateResult is the evaluation of one candidate node type
type CandidateResult struct {
	InstanceType  string         `json:"instance_type" yaml:"instance_type"`
	Profile       *InstanceType  `json:"profile,omitempty" yaml:"profile,omitempty"`
	Sizing        *DerivedSizing `json:"sizing,omitempty" yaml:"sizing,omitempty"`
	NodesRequired int            `json:"nodes_required" yaml:"nodes_required"`
	TotalTasks    int            `json:"total_tasks" yaml:"total_tasks"`
	HourlyCost    float64        `json:"hourly_cost" yaml:"hourly_cost"`
	Priced        bool           `json:"priced" yaml:"priced"`
	Recommended   bool           `json:"recommended" yaml:"recommended"`
	Error         string         `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind     string         `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

// CompareResult ranks candidates; failed candidates are listed last
type CompareResult struct {
	TargetReplicas int               `json:"target_replicas" yaml:"target_replicas"`
	Candidates     []CandidateResult `json:"candidates" yaml:"candidates"`
	Recommended    string            `json:"recommended,omitempty" yaml:"recommended,omitempty"`
}

// InstanceTypeList is the body of GET /api/v1/instance-types
type InstanceTypeList struct {
	InstanceTypes []InstanceType `json:"instance_types" yaml:"instance_types"`
	Sources       []string       `json:"sources" yaml:"sources"`
}
