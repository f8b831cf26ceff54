package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"docmcp/internal/fsmeta"
	"docmcp/internal/model"
)

func scanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "scan <dir>",
		Short:   "Print metadata for every file under a directory",
		Example: "docmcp scan ./docs",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, "stderr")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			files, err := fsmeta.Scan(args[0], log)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(model.NewFileListResponse(files))
		},
	}
}
