package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/pkg/crm"
)

var statusDiagram bool

// statusNode is the shape introspection.TreeDiagram renders. Status must be
// one of the classes in introspection.DefaultStyles().
type statusNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []statusNode
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workspace and storage state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			state, _ := ws.State().(crm.WorkspaceState)
			storageType := componentType(ws.Storage())

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"component": ws.ComponentType(),
					"storage":   storageType,
					"state":     state,
				})
			}

			root := statusTree(ws.ComponentType(), storageType, cfg.URI(), state)
			if statusDiagram {
				config := introspection.DefaultDiagramConfig()
				config.SecondaryID = "workspace"
				config.SecondaryLabel = "Workspace Topology"
				fmt.Fprintln(cmd.OutOrStdout(), introspection.TreeDiagram(root, config))
				return nil
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Workspace\t%s\n", ws.ComponentType())
			fmt.Fprintf(tw, "Importing\t%t\n", state.Importing)
			fmt.Fprintf(tw, "Storage\t%s\n", storageType)
			meta := root.Children[0].Metadata
			for _, k := range slices.Sorted(maps.Keys(meta)) {
				fmt.Fprintf(tw, "  %s\t%s\n", k, meta[k])
			}
			return tw.Flush()
		})
	},
}

func componentType(v any) string {
	if c, ok := v.(introspection.Component); ok {
		return c.ComponentType()
	}
	return "storage"
}

func statusTree(workspace, storage, uri string, state crm.WorkspaceState) statusNode {
	importStatus := "suspended"
	if state.Importing {
		importStatus = "running"
	}
	return statusNode{
		Name:     "Workspace",
		Status:   "running",
		Metadata: map[string]string{"type": workspace, "uri": uri},
		Children: []statusNode{
			{
				Name:     "Storage",
				Status:   "running",
				Metadata: stateMetadata(storage, state.Storage),
			},
			{
				Name:     "Import",
				Status:   importStatus,
				Metadata: map[string]string{"type": "guard"},
			},
		},
	}
}

// stateMetadata flattens an adapter state struct into string pairs through
// its JSON form.
func stateMetadata(kind string, state any) map[string]string {
	meta := map[string]string{"type": kind}
	data, err := json.Marshal(state)
	if err != nil {
		return meta
	}
	var fields map[string]any
	if json.Unmarshal(data, &fields) != nil {
		return meta
	}
	for k, v := range fields {
		meta[k] = fmt.Sprint(v)
	}
	return meta
}

func init() {
	statusCmd.Flags().BoolVar(&statusDiagram, "diagram", false, "Print a Mermaid diagram of the workspace")
	rootCmd.AddCommand(statusCmd)
}
