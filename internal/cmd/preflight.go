package cmd

import (
	"os/exec"
	"strings"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
)

// requiredTools must be on PATH before any work starts. The run aborts
// immediately when one is missing rather than failing halfway through.
var requiredTools = []string{"git", "rsync", "ssh"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// CheckLocalTools verifies every external binary the run depends on.
func CheckLocalTools() error {
	var missing []string
	for _, tool := range requiredTools {
		if _, err := lookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		return exitcode.New(exitcode.MissingTool,
			"required tools not found on PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}
