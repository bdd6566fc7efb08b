package main

import (
	"errors"
	"fmt"
	"strings"

	"pdfchat-be/internal/bootstrap"
	"pdfchat-be/pkg/rag/prompt"
	"pdfchat-be/pkg/rag/response"

	"github.com/spf13/cobra"
)

func newAskCmd(flags *globalFlags) *cobra.Command {
	var (
		fileKey    string
		ingestPath string
		showCtx    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from one indexed PDF",
		Example: `  pdfctl ask --key uploads/1718000000000manual.pdf "How long is the warranty?"
  pdfctl --index memory ask --ingest ./manual.pdf "Summarize this document"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileKey == "" && ingestPath == "" {
				return errors.New("either --key or --ingest is required")
			}

			rt, err := newRuntime(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if ingestPath != "" {
				summary, err := rt.ingestFile(ctx, ingestPath)
				if err != nil {
					return err
				}
				fileKey = summary.FileKey
				fmt.Fprintf(cmd.ErrOrStderr(), "indexed %s (%d pages, %d chunks)\n", fileKey, summary.PageCount, summary.ChunkCount)
			}

			llmProvider, err := bootstrap.NewLLMProvider(rt.cfg.Ai)
			if err != nil {
				return err
			}

			classifier := bootstrap.NewIntentClassifier(rt.cfg.Ai, llmProvider, rt.log)
			retriever := bootstrap.NewRetrieval(rt.embedder, rt.index, classifier, rt.cfg.RAG, rt.log)

			query := strings.Join(args, " ")
			result := retriever.Search(ctx, query, fileKey)
			if showCtx {
				fmt.Fprintf(cmd.ErrOrStderr(), "--- context (%s) ---\n%s\n---\n", result.Intent.Kind, result.Context)
			}

			generator := response.NewGenerator(
				llmProvider,
				prompt.NewBuilder("", 0),
				nil,
				nil,
				response.DefaultCommitPolicy(),
				rt.log,
				bootstrap.LLMOptions(rt.cfg.Ai)...,
			)

			out := cmd.OutOrStdout()
			_, err = generator.Generate(ctx, response.Request{Query: query, Context: result.Context}, func(token string) error {
				_, err := fmt.Fprint(out, token)
				return err
			})
			fmt.Fprintln(out)
			return err
		},
	}

	cmd.Flags().StringVar(&fileKey, "key", "", "File key of an already ingested document")
	cmd.Flags().StringVar(&ingestPath, "ingest", "", "Ingest this PDF first and ask against it")
	cmd.Flags().BoolVar(&showCtx, "show-context", false, "Print the retrieved context to stderr")
	return cmd
}
