package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-carvalue/pkg/openapi"
)

func newOpenAPICmd(root *rootOptions) *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document describing POST /predict",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.loadSchema()
			if err != nil {
				return err
			}
			options := []openapi.Option{openapi.WithInfo("carvalue", version)}
			if serverURL != "" {
				options = append(options, openapi.WithServer(serverURL))
			}
			doc, err := openapi.Build(cmd.Context(), s, options...)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode openapi: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "server URL advertised in the document")
	return cmd
}
