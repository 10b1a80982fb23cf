// ABOUTME: Tests for the compare command
// ABOUTME: Verifies candidate assembly, ranking output, and exit codes

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

func TestBuildCompareRequest_ArgsAndFlags(t *testing.T) {
	resetCompareFlags(t)
	compareCandidates = []string{"t3.small", "t3.medium"}
	compareTarget = 12
	compareOverrides.workerCount = 2

	req, err := buildCompareRequest([]string{"m5.large"}, changedFlags("candidates", "target", "workers"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Candidates) != 3 || req.Candidates[2] != "m5.large" {
		t.Errorf("expected flag candidates followed by args, got %v", req.Candidates)
	}
	if req.TargetReplicas != 12 {
		t.Errorf("expected target 12, got %d", req.TargetReplicas)
	}
	if req.SubnetCount != 2 {
		t.Errorf("expected default 2 subnets, got %d", req.SubnetCount)
	}
	if req.Overrides.WorkerCount == nil || *req.Overrides.WorkerCount != 2 {
		t.Error("expected worker override to be applied")
	}
}

func TestBuildCompareRequest_FromFile(t *testing.T) {
	resetCompareFlags(t)
	compareFile = writeFile(t, "compare.yaml", `
candidates: [t3.small, t3.micro]
target_replicas: 8
`)
	compareTarget = 20

	req, err := buildCompareRequest(nil, changedFlags("target"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Candidates) != 2 {
		t.Errorf("expected candidates from file, got %v", req.Candidates)
	}
	if req.TargetReplicas != 20 {
		t.Errorf("expected flag to override target, got %d", req.TargetReplicas)
	}
}

func TestBuildCompareRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		target  int
		changed []string
	}{
		{"no candidates", nil, 12, []string{"target"}},
		{"no target", []string{"t3.small"}, 0, nil},
		{"negative target", []string{"t3.small"}, -1, []string{"target"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetCompareFlags(t)
			compareTarget = tt.target

			if _, err := buildCompareRequest(tt.args, changedFlags(tt.changed...)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCompareCommand_LocalText(t *testing.T) {
	resetCompareFlags(t)

	var buf bytes.Buffer
	exitCode := runCompare(context.Background(), &buf, &models.CompareRequest{
		Candidates:     []string{"t3.medium", "t3.small"},
		TargetReplicas: 12,
		SubnetCount:    2,
	})

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Recommended: t3.small") {
		t.Errorf("expected recommendation in output\n%s", buf.String())
	}
}

func TestCompareCommand_LocalJSON(t *testing.T) {
	resetCompareFlags(t)
	jsonOutput = true

	var buf bytes.Buffer
	exitCode := runCompare(context.Background(), &buf, &models.CompareRequest{
		Candidates:     []string{"x9.huge", "t3.small"},
		TargetReplicas: 12,
		SubnetCount:    2,
	})
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}

	var result models.CompareResult
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result.Recommended != "t3.small" {
		t.Errorf("expected t3.small recommended, got %q", result.Recommended)
	}
	last := result.Candidates[len(result.Candidates)-1]
	if last.InstanceType != "x9.huge" || last.Error == "" {
		t.Errorf("expected unknown candidate listed last with an error, got %+v", last)
	}
}

func TestCompareCommand_NoUsableCandidate(t *testing.T) {
	resetCompareFlags(t)

	var buf bytes.Buffer
	exitCode := runCompare(context.Background(), &buf, &models.CompareRequest{
		Candidates:     []string{"x9.huge"},
		TargetReplicas: 12,
		SubnetCount:    2,
	})

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
}

func TestCompareCommand_Remote(t *testing.T) {
	resetCompareFlags(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/compare" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req models.CompareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(models.CompareResult{
			TargetReplicas: req.TargetReplicas,
			Candidates: []models.CandidateResult{
				{InstanceType: "vsphere-medium", NodesRequired: 2, TotalTasks: 12, Recommended: true},
			},
			Recommended: "vsphere-medium",
		})
	}))
	defer server.Close()
	apiURL = server.URL
	compareRemote = true
	outputFormat = formatYAML

	var buf bytes.Buffer
	exitCode := runCompare(context.Background(), &buf, &models.CompareRequest{
		Candidates:     []string{"vsphere-medium"},
		TargetReplicas: 12,
		SubnetCount:    2,
	})

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "recommended: vsphere-medium") {
		t.Errorf("expected yaml recommendation, got:\n%s", buf.String())
	}
}

func TestCompareCommand_RemoteError(t *testing.T) {
	resetCompareFlags(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "target_replicas must be greater than 0", Code: http.StatusBadRequest})
	}))
	defer server.Close()
	apiURL = server.URL
	compareRemote = true

	var buf bytes.Buffer
	exitCode := runCompare(context.Background(), &buf, &models.CompareRequest{Candidates: []string{"t3.small"}, TargetReplicas: 1})

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "target_replicas") {
		t.Errorf("expected server message in output, got %q", buf.String())
	}
}
