package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"togglkit/internal/app"
	"togglkit/pkg/domain"
)

func newReportCommand(g *globals) *cobra.Command {
	var params domain.PagedReportsParameter
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print one page of the detailed report as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if params.WorkspaceID == 0 {
				params.WorkspaceID = g.cfg.Toggl.WorkspaceID
			}
			if params.WorkspaceID == 0 {
				return fmt.Errorf("--workspace or TOGGL_WORKSPACE_ID is required")
			}
			client := app.NewTogglClient(g.cfg.Toggl, g.log)
			res, err := client.GetDetailedReport(cmd.Context(), params)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().Int64Var(&params.WorkspaceID, "workspace", 0, "Workspace id (default: TOGGL_WORKSPACE_ID)")
	cmd.Flags().StringVar(&params.Since, "since", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&params.Until, "until", "", "Last day, YYYY-MM-DD")
	cmd.Flags().Int64SliceVar(&params.ProjectIDs, "project", nil, "Project id filter (repeatable)")
	cmd.Flags().StringVar(&params.Description, "description", "", "Free-text filter on descriptions")
	cmd.Flags().IntVar(&params.Page, "page", 0, "Page number")
	return cmd
}
