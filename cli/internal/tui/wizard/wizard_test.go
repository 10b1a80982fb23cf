// ABOUTME: Tests for the plan wizard
// ABOUTME: Validates step flow, input conversion, and validation

package wizard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/pypiserver-capacity/backend/models"
)

var testTypes = []models.InstanceType{
	{Name: "t3.small", VCPUCount: 2, MemoryMB: 2048, OnDemandPricePerHour: 0.0208, Source: "static"},
	{Name: "m5.large", VCPUCount: 2, MemoryMB: 8192, OnDemandPricePerHour: 0.096, Source: "static"},
}

func TestWizardDefaults(t *testing.T) {
	w := New(testTypes, 3)

	if w.instanceType != "t3.small" {
		t.Errorf("expected first catalog type preselected, got %s", w.instanceType)
	}
	if w.subnets != "3" {
		t.Errorf("expected default subnets 3, got %s", w.subnets)
	}
	if w.workers != Auto {
		t.Errorf("expected auto workers, got %s", w.workers)
	}
	if w.step != 1 {
		t.Errorf("expected step 1, got %d", w.step)
	}
}

func TestWizardNoCatalog(t *testing.T) {
	w := New(nil, 0)

	if w.instanceType != CustomShape {
		t.Errorf("expected custom shape without catalog, got %s", w.instanceType)
	}
	if w.subnets != "2" {
		t.Errorf("expected fallback subnets 2, got %s", w.subnets)
	}
}

func TestInstanceOptionsIncludeCustom(t *testing.T) {
	w := New(testTypes, 2)
	opts := w.instanceOptions()

	if len(opts) != len(testTypes)+1 {
		t.Fatalf("expected %d options, got %d", len(testTypes)+1, len(opts))
	}
	if opts[len(opts)-1].Value != CustomShape {
		t.Errorf("expected custom shape last, got %s", opts[len(opts)-1].Value)
	}
}

func TestAdvanceSkipsShapeForCatalogType(t *testing.T) {
	w := New(testTypes, 2)

	w.advanceStep()
	if w.step != 3 {
		t.Errorf("expected catalog type to skip to step 3, got %d", w.step)
	}

	w.advanceStep()
	if !w.done {
		t.Error("expected wizard to be done after last step")
	}
}

func TestAdvanceVisitsShapeForCustom(t *testing.T) {
	w := New(testTypes, 2)
	w.instanceType = CustomShape

	w.advanceStep()
	if w.step != 2 {
		t.Errorf("expected custom shape step, got %d", w.step)
	}
	w.advanceStep()
	if w.step != 3 {
		t.Errorf("expected container step, got %d", w.step)
	}
}

func TestEscCancels(t *testing.T) {
	w := New(testTypes, 2)

	_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !w.cancelled {
		t.Error("expected esc to cancel the wizard")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if w.View() != "" {
		t.Error("expected empty view after cancel")
	}
}

func TestRequestCatalogType(t *testing.T) {
	w := New(testTypes, 2)
	w.instanceType = "m5.large"
	w.subnets = " 3 "

	req, err := w.Request()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.InstanceType != "m5.large" || req.Instance != nil {
		t.Errorf("expected catalog lookup request, got %+v", req)
	}
	if req.SubnetCount != 3 {
		t.Errorf("expected 3 subnets, got %d", req.SubnetCount)
	}
	if req.Overrides != (models.SizingOverrides{}) {
		t.Errorf("expected no overrides for defaults, got %+v", req.Overrides)
	}
}

func TestRequestCustomShapeWithOverrides(t *testing.T) {
	w := New(testTypes, 2)
	w.instanceType = CustomShape
	w.vcpu = "4"
	w.memoryMB = "16384"
	w.containerMB = "1024"
	w.workers = "6"
	w.replicaMax = "40"

	req, err := w.Request()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Instance == nil || req.Instance.VCPUCount != 4 || req.Instance.MemoryMB != 16384 {
		t.Fatalf("expected inline 4 vCPU / 16384 MB profile, got %+v", req.Instance)
	}
	if req.InstanceType != "" {
		t.Errorf("expected no instance type name, got %s", req.InstanceType)
	}
	if *req.Overrides.ContainerMemoryMB != 1024 {
		t.Errorf("expected container memory 1024, got %d", *req.Overrides.ContainerMemoryMB)
	}
	if *req.Overrides.WorkerCount != 6 {
		t.Errorf("expected 6 workers, got %d", *req.Overrides.WorkerCount)
	}
	if *req.Overrides.ReplicaMax != 40 {
		t.Errorf("expected replica max 40, got %d", *req.Overrides.ReplicaMax)
	}
}

func TestRequestInvalidShape(t *testing.T) {
	w := New(nil, 2)
	w.vcpu = "two"

	if _, err := w.Request(); err == nil {
		t.Error("expected error for non-numeric vcpu")
	}
}

func TestValidatePositiveInt(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"10", false},
		{"1", false},
		{" 4 ", false},
		{"0", true},
		{"-1", true},
		{"abc", true},
		{"", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			err := validatePositiveInt(tc.input)
			if tc.wantErr && err == nil {
				t.Errorf("expected error for input %q", tc.input)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error for input %q: %v", tc.input, err)
			}
		})
	}
}

func TestValidateOptionalPositiveInt(t *testing.T) {
	if err := validateOptionalPositiveInt(""); err != nil {
		t.Errorf("expected empty input to be accepted, got %v", err)
	}
	if err := validateOptionalPositiveInt("0"); err == nil {
		t.Error("expected zero to be rejected")
	}
}

func TestWorkerOptionsWithinOverrideRange(t *testing.T) {
	for _, opt := range workerOptions {
		if opt.Value == Auto {
			continue
		}
		if err := validatePositiveInt(opt.Value); err != nil {
			t.Errorf("invalid worker option %q", opt.Value)
		}
	}
}
