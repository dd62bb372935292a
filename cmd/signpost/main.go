// Package main provides the signpost CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/signpost/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "signpost:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the CLI exit code: user errors (bad input,
// missing entities, lifecycle violations) exit 1, everything else exits 2.
func exitCode(err error) int {
	userErrors := []error{
		types.ErrNotFound,
		types.ErrInvalidID,
		types.ErrInvalidData,
		types.ErrInvalidFilter,
		types.ErrTableNotFound,
		types.ErrInvalidAnswer,
		types.ErrUnknownQuestion,
		types.ErrUnknownSection,
		types.ErrPlanLocked,
		types.ErrPlanNotLocked,
		types.ErrTemplateDraft,
		types.ErrTemplatePublished,
		types.ErrAlreadyPublished,
	}
	for _, ue := range userErrors {
		if errors.Is(err, ue) {
			return exitUserError
		}
	}
	return exitSysError
}
