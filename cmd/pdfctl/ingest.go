package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newIngestCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.pdf>",
		Short: "Store, chunk, embed and index a PDF",
		Example: `  pdfctl ingest ./manual.pdf
  pdfctl --index memory ingest ./manual.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(flags)
			if err != nil {
				return err
			}

			summary, err := rt.ingestFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file_key:  %s\n", summary.FileKey)
			fmt.Fprintf(out, "namespace: %s\n", summary.Namespace)
			fmt.Fprintf(out, "pages:     %d\n", summary.PageCount)
			fmt.Fprintf(out, "chunks:    %d\n", summary.ChunkCount)
			fmt.Fprintf(out, "took:      %s\n", summary.Duration.Round(time.Millisecond))
			return nil
		},
	}
}
