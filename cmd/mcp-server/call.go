package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newCallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call TOOL [ARGUMENTS]",
		Short: "Invoke one tool locally and print its result",
		Long: `Invoke one tool without an MCP client. ARGUMENTS is a JSON object; when it
is omitted the object is read from stdin.`,
		Example: `  mcp-server call fgh_det '{"matrix": [[1, 2], [3, 4]]}'
  echo '{"n": 2}' | mcp-server call fgh_identity`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			t := newToolServer(cfg, log, prometheus.NewRegistry())

			st, ok := lo.Find(t.Tools(), func(st server.ServerTool) bool { return st.Tool.Name == args[0] })
			if !ok {
				return errors.Errorf("unknown tool %q", args[0])
			}

			var raw []byte
			if len(args) == 2 {
				raw = []byte(args[1])
			} else if raw, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return errors.Wrap(err, "reading arguments")
			}
			var arguments map[string]any
			if err := json.Unmarshal(raw, &arguments); err != nil {
				return errors.Wrap(err, "arguments must be a JSON object")
			}

			var req mcp.CallToolRequest
			req.Params.Name = st.Tool.Name
			req.Params.Arguments = arguments
			res, err := st.Handler(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, c := range res.Content {
				if text, ok := c.(mcp.TextContent); ok {
					fmt.Fprintln(cmd.OutOrStdout(), text.Text)
				}
			}
			if res.IsError {
				return errors.Errorf("%s failed", st.Tool.Name)
			}
			return nil
		},
	}
}
