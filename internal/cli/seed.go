package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docmcp/internal/config"
	"docmcp/internal/fsmeta"
	"docmcp/internal/model"
	"docmcp/internal/service"
)

type seedResult struct {
	metadata  int
	documents int
	skipped   int
	failed    int
}

func seedCmd(opts *rootOptions) *cobra.Command {
	var documents bool

	cmd := &cobra.Command{
		Use:   "seed <dir>",
		Short: "Store metadata for every file under a directory",
		Long: `Scan a directory and upsert the metadata of every file. With --documents each
.json file is also created as a document whose content is the parsed file.`,
		Example: "docmcp seed ./docs --documents",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), opts, func(ctx context.Context, _ *config.AppConfig, log *zap.Logger, b *backend) error {
				files, err := fsmeta.Scan(args[0], log)
				if err != nil {
					return err
				}
				svc := service.NewDocumentService(b.docs, b.meta, log)
				res, err := seed(ctx, svc, files, documents, log)
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d metadata records, %d documents (%d already stored)\n", res.metadata, res.documents, res.skipped)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&documents, "documents", false, "create a document for every .json file")
	return cmd
}

// seed upserts metadata for the scanned files. When documents is set, .json files are
// created as documents instead; Create writes their metadata itself. A .json file whose
// path already has metadata is skipped, so re-running seed never creates a document
// that cannot get its metadata row.
func seed(ctx context.Context, svc service.DocumentService, files []model.FileMetadata, documents bool, log *zap.Logger) (seedResult, error) {
	var res seedResult

	plain := files
	var jsonFiles []model.FileMetadata
	if documents {
		plain = make([]model.FileMetadata, 0, len(files))
		for _, f := range files {
			if strings.EqualFold(filepath.Ext(f.Path), ".json") {
				jsonFiles = append(jsonFiles, f)
				continue
			}
			plain = append(plain, f)
		}
	}

	n, err := svc.SeedMetadata(ctx, plain)
	res.metadata = n
	if err != nil {
		return res, err
	}

	for _, meta := range jsonFiles {
		stored, err := hasMetadata(ctx, svc, meta.Path)
		if err != nil {
			return res, err
		}
		if stored {
			log.Info("document already seeded", zap.String("path", meta.Path))
			res.skipped++
			continue
		}

		content, err := fsmeta.ReadJSONContent(meta.Path)
		if err != nil {
			log.Warn("skipping document", zap.String("path", meta.Path), zap.Error(err))
			res.failed++
			continue
		}
		resp, err := svc.Create(ctx, &model.Document{Path: meta.Path, Content: content, Metadata: meta})
		if err != nil {
			log.Warn("create document failed", zap.String("path", meta.Path), zap.Error(err))
			res.failed++
			continue
		}
		res.documents++
		log.Debug("document created", zap.String("document_id", resp.DocumentID), zap.String("path", resp.Path))
	}

	if res.failed > 0 {
		return res, fmt.Errorf("%d of %d documents could not be created", res.failed, len(jsonFiles))
	}
	return res, nil
}

func hasMetadata(ctx context.Context, svc service.DocumentService, path string) (bool, error) {
	files, err := svc.ListByPathPrefix(ctx, path)
	if err != nil {
		return false, fmt.Errorf("look up metadata %s: %w", path, err)
	}
	for _, f := range files {
		if f.Path == path {
			return true, nil
		}
	}
	return false, nil
}
