// ABOUTME: Tests for the plan command
// ABOUTME: Verifies request assembly, local and remote planning, and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markalston/pypiserver-capacity/backend/models"
)

func TestBuildPlanRequest_RequiresShape(t *testing.T) {
	resetPlanFlags(t)

	if _, err := buildPlanRequest(changedFlags()); err == nil {
		t.Error("expected error when no node shape is given")
	}
}

func TestBuildPlanRequest_FromFlags(t *testing.T) {
	resetPlanFlags(t)
	planInstanceType = "t3.small"
	planOverrides.workerCount = 2

	req, err := buildPlanRequest(changedFlags("instance-type", "workers"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.InstanceType != "t3.small" {
		t.Errorf("expected t3.small, got %s", req.InstanceType)
	}
	if req.SubnetCount != 2 {
		t.Errorf("expected default 2 subnets, got %d", req.SubnetCount)
	}
	if req.Overrides.WorkerCount == nil || *req.Overrides.WorkerCount != 2 {
		t.Errorf("expected worker override 2, got %v", req.Overrides.WorkerCount)
	}
	if req.Overrides.ReplicaMax != nil || req.Overrides.NodeMin != nil {
		t.Error("expected unset flags to leave overrides nil")
	}
}

func TestBuildPlanRequest_ExplicitZeroIsKept(t *testing.T) {
	resetPlanFlags(t)
	planInstanceType = "t3.small"
	planOverrides.workerCount = 0

	req, err := buildPlanRequest(changedFlags("instance-type", "workers"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Overrides.WorkerCount == nil || *req.Overrides.WorkerCount != 0 {
		t.Error("expected explicit --workers 0 to reach the planner")
	}
}

func TestBuildPlanRequest_CustomShape(t *testing.T) {
	resetPlanFlags(t)
	planVCPU = 4
	planMemoryMB = 16384

	req, err := buildPlanRequest(changedFlags("vcpu", "memory-mb"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Instance == nil || req.Instance.VCPUCount != 4 || req.Instance.MemoryMB != 16384 {
		t.Errorf("expected inline 4 vCPU / 16384 MB, got %+v", req.Instance)
	}
}

func TestBuildPlanRequest_FlagsOverrideFile(t *testing.T) {
	resetPlanFlags(t)
	planFile = writeFile(t, "plan.yaml", `
instance_type: m5.large
subnet_count: 3
overrides:
  worker_count: 3
  replica_max: 20
`)
	planOverrides.workerCount = 5

	req, err := buildPlanRequest(changedFlags("workers"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.InstanceType != "m5.large" {
		t.Errorf("expected instance type from file, got %s", req.InstanceType)
	}
	if req.SubnetCount != 3 {
		t.Errorf("expected subnet count from file, got %d", req.SubnetCount)
	}
	if *req.Overrides.WorkerCount != 5 {
		t.Errorf("expected flag to override file worker count, got %d", *req.Overrides.WorkerCount)
	}
	if *req.Overrides.ReplicaMax != 20 {
		t.Errorf("expected replica max from file, got %d", *req.Overrides.ReplicaMax)
	}
}

func TestBuildPlanRequest_FileUnknownKey(t *testing.T) {
	resetPlanFlags(t)
	planFile = writeFile(t, "plan.yaml", `
instance_type: m5.large
overrides:
  worker_cuont: 3
`)

	if _, err := buildPlanRequest(changedFlags()); err == nil {
		t.Error("expected error for misspelled override key")
	}
}

func TestBuildPlanRequest_MissingFile(t *testing.T) {
	resetPlanFlags(t)
	planFile = "/nonexistent/plan.yaml"

	if _, err := buildPlanRequest(changedFlags()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPlanCommand_LocalText(t *testing.T) {
	resetPlanFlags(t)

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{InstanceType: "t3.small", SubnetCount: 2})

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	for _, expected := range []string{"t3.small", "Workers:", "Replicas:"} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("expected output to contain %q\n%s", expected, buf.String())
		}
	}
}

func TestPlanCommand_LocalJSON(t *testing.T) {
	resetPlanFlags(t)
	jsonOutput = true

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{InstanceType: "t3.small", SubnetCount: 2})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}

	var resp models.PlanResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if resp.Sizing.NodeTaskCapacity != 3 {
		t.Errorf("expected 3 tasks per node, got %d", resp.Sizing.NodeTaskCapacity)
	}
	if resp.Sizing.ReplicaMin != 6 || resp.Sizing.ReplicaMax != 12 {
		t.Errorf("expected replicas 6-12, got %d-%d", resp.Sizing.ReplicaMin, resp.Sizing.ReplicaMax)
	}
}

func TestPlanCommand_LocalYAML(t *testing.T) {
	resetPlanFlags(t)
	outputFormat = formatYAML

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{InstanceType: "t3.small", SubnetCount: 2})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "binding_constraint: balanced") {
		t.Errorf("expected yaml sizing fields, got:\n%s", buf.String())
	}
}

func TestPlanCommand_ConfigErrorExitCode(t *testing.T) {
	resetPlanFlags(t)

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{
		InstanceType: "t3.small",
		SubnetCount:  2,
		Overrides:    models.SizingOverrides{WorkerCount: models.IntPtr(40)},
	})

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "InvalidOverride") {
		t.Errorf("expected error kind in output, got %q", buf.String())
	}
}

func TestPlanCommand_ContainerMemoryTooSmall(t *testing.T) {
	resetPlanFlags(t)

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{
		InstanceType: "t3.small",
		SubnetCount:  2,
		Overrides:    models.SizingOverrides{ContainerMemoryMB: models.IntPtr(1)},
	})

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "container_memory_mb=1") {
		t.Errorf("expected offending override in output, got %q", buf.String())
	}
}

func TestPlanCommand_UnknownInstanceType(t *testing.T) {
	resetPlanFlags(t)

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{InstanceType: "x9.huge", SubnetCount: 2})

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
}

func TestPlanCommand_Remote(t *testing.T) {
	resetPlanFlags(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/plan" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.PlanResponse{
			Profile: models.InstanceProfile{InstanceType: "pypi-node", VCPUCount: 2, MemoryMB: 2048},
			Sizing:  models.DerivedSizing{WorkerCount: 4, NodeTaskCapacity: 3, BindingConstraint: "balanced"},
			CapacityInfo: models.CapacityInfo{
				InstanceType: "pypi-node", InstanceVCPU: 2, InstanceRAMMB: 2048, BindingConstraint: "balanced",
			},
		})
	}))
	defer server.Close()
	apiURL = server.URL
	planRemote = true

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{InstanceType: "pypi-node", SubnetCount: 2})

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "pypi-node") {
		t.Errorf("expected remote instance type in output\n%s", buf.String())
	}
}

func TestPlanCommand_RemoteConfigError(t *testing.T) {
	resetPlanFlags(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(models.ErrorResponse{
			Error: "InconsistentBounds: replica_min=9 violates <= replica_max (4)",
			Code:  http.StatusUnprocessableEntity,
			Kind:  "InconsistentBounds",
			Field: "replica_min",
		})
	}))
	defer server.Close()
	apiURL = server.URL
	planRemote = true

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{InstanceType: "t3.small"})

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "replica_min") {
		t.Errorf("expected offending field in output, got %q", buf.String())
	}
}

func TestPlanCommand_RemoteConnectionError(t *testing.T) {
	resetPlanFlags(t)
	apiURL = "http://localhost:99999"
	planRemote = true

	var buf bytes.Buffer
	exitCode := runPlan(context.Background(), &buf, &models.PlanRequest{InstanceType: "t3.small"})

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
}
