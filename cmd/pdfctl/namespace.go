package main

import (
	"fmt"

	"pdfchat-be/pkg/vectorindex"

	"github.com/spf13/cobra"
)

func newNamespaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "namespace <file-key>",
		Short: "Print the vector index namespace for a file key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), vectorindex.Namespace(args[0]))
			return nil
		},
	}
}
