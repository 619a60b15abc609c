package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mlapp/folio/client"
	"github.com/mlapp/folio/history"
	"github.com/spf13/cobra"
)

var (
	askServer   string
	askProvider string
	askModel    string
	askSave     string
)

func init() {
	askCmd.Flags().StringVar(&askServer, "server", client.DefaultAddress, "Address of a running foliod")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "LLM provider (claude, openai, ollama); default is the daemon's")
	askCmd.Flags().StringVar(&askModel, "model", "", "Model override")
	askCmd.Flags().StringVar(&askSave, "save", "", "Save the exchange to history under this prompt type")
	rootCmd.AddCommand(askCmd)
}

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send a prompt through a running foliod",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.Connect(askServer, 2*time.Minute)
		if err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		resp, err := c.Generate(cmd.Context(), client.GenerateRequest{
			Provider: askProvider,
			Prompt:   prompt,
			Model:    askModel,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.ResponseText)
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s %s, %d tokens, %dms]\n", resp.Provider, resp.Model, resp.TokensUsed, resp.ElapsedMillis)

		if askSave == "" {
			return nil
		}
		tokens := resp.TokensUsed
		elapsed := resp.ElapsedMillis
		saved, err := c.SaveHistory(cmd.Context(), history.SaveRequest{
			PromptType:     askSave,
			Prompt:         prompt,
			Provider:       resp.Provider.String(),
			Model:          resp.Model,
			Response:       resp.ResponseText,
			TokensUsed:     &tokens,
			ResponseTimeMs: &elapsed,
		})
		if err != nil {
			return fmt.Errorf("response received but not saved: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved as history record %d\n", saved.ID)
		return nil
	},
}
