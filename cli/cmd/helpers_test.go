// ABOUTME: Shared helpers for command tests
// ABOUTME: Resets package-level flag state between tests

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// changedFlags reports the given flag names as explicitly set
func changedFlags(names ...string) changedFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func resetPlanFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		planInstanceType = ""
		planVCPU = 0
		planMemoryMB = 0
		planSubnets = defaultSubnetCount
		planFile = ""
		planInteractive = false
		planRemote = false
		planOverrides = overrideFlags{}
		apiURL = ""
		jsonOutput = false
		outputFormat = formatText
	}
	reset()
	t.Cleanup(reset)
}

func resetCompareFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		compareCandidates = nil
		compareTarget = 0
		compareSubnets = defaultSubnetCount
		compareFile = ""
		compareRemote = false
		compareOverrides = overrideFlags{}
		apiURL = ""
		jsonOutput = false
		outputFormat = formatText
	}
	reset()
	t.Cleanup(reset)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
