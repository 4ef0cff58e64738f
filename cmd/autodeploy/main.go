package main

import (
	"os"

	"github.com/TheGreatWizard16/hng-devops-stage1/internal/cmd"
	"github.com/TheGreatWizard16/hng-devops-stage1/internal/exitcode"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(exitcode.CodeOf(err))
	}
}
