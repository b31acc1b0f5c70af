package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panel-layout/backend/internal/command"
)

var (
	runProject string
	runJSON    bool
)

// runCmd executes a single command against the configured store
var runCmd = &cobra.Command{
	Use:   "run [message]",
	Short: "Run one layout command and print the reply",
	Long: `Sends one free-form message through the command pipeline against the
configured store, exactly as POST /api/command would.

Example:
  panel-layout run --project site-7 "move panel P003 to (120, 40)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

func init() {
	runCmd.Flags().StringVarP(&runProject, "project", "p", "", "Project ID (required)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the full response envelope as JSON")
	_ = runCmd.MarkFlagRequired("project")
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.dispatcher.Handle(ctx, command.Request{
		ProjectID: runProject,
		Message:   strings.Join(args, " "),
	})
	if err != nil && resp == nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(resp); encErr != nil {
			return encErr
		}
		return err
	}

	fmt.Fprintln(out, resp.Reply)
	for _, action := range resp.Actions {
		status := "ok"
		if !action.Success {
			status = "failed: " + action.Error
		}
		fmt.Fprintf(out, "  - %s (%s)\n", action.Description, status)
	}
	return err
}
