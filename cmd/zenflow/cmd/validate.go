package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zenflow/pkg/bpmn"
	"github.com/pbinitiative/zenflow/pkg/bpmn/model"
	"github.com/spf13/cobra"
)

var errInvalidWorkflows = errors.New("some workflows are invalid")

func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.yaml>...",
		Short: "-> Check workflow definitions.",
		Long: `The validate command deploys every file to a throwaway in-memory engine and prints the problems found.
Warnings are printed but do not fail the command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd, args)
		},
	}
}

func validate(cmd *cobra.Command, files []string) error {
	engine, err := bpmn.NewEngine(bpmn.EngineWithLogger(hclog.NewNullLogger()))
	if err != nil {
		return err
	}
	defer engine.Stop()

	out := cmd.OutOrStdout()
	failed := false
	for _, file := range files {
		if !validateFile(cmd, engine, out, file) {
			failed = true
		}
	}
	if failed {
		return errInvalidWorkflows
	}
	return nil
}

func validateFile(cmd *cobra.Command, engine *bpmn.Engine, out io.Writer, file string) bool {
	workflow, err := model.LoadFromFile(file)
	if err != nil {
		fmt.Fprintf(out, "%s: %s\n", file, err)
		return false
	}
	_, err = engine.DeployWorkflow(cmd.Context(), workflow)
	var validationError *model.ValidationError
	switch {
	case errors.As(err, &validationError):
		fmt.Fprintf(out, "%s: %d problems\n", file, len(validationError.Issues))
		for _, issue := range validationError.Issues {
			fmt.Fprintf(out, "  %s %s\n", issue.Level, issue)
		}
		return false
	case err != nil:
		fmt.Fprintf(out, "%s: %s\n", file, err)
		return false
	}
	warnings := workflow.Warnings()
	fmt.Fprintf(out, "%s: ok, workflow %s", file, workflow.Id)
	if len(warnings) > 0 {
		fmt.Fprintf(out, ", %d warnings", len(warnings))
	}
	fmt.Fprintln(out)
	for _, warning := range warnings {
		fmt.Fprintf(out, "  %s %s\n", warning.Level, warning)
	}
	return true
}
