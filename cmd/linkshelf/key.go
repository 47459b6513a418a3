package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkshelf/internal/preview"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
	"github.com/MrSnakeDoc/linkshelf/internal/utils"
)

func init() {
	keyCmd.AddCommand(keyShowCmd, keySetCmd, keyClearCmd)
	rootCmd.AddCommand(keyCmd)
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the link preview API key stored in the backend",
}

// withCredential opens the backend and hands fn the stored preview key.
func withCredential(cmd *cobra.Command, fn func(*preview.Credential) error) error {
	backend, _, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer utils.Close(backend)

	cred, err := preview.NewCredential(cmd.Context(), store.Slot(backend, store.PreviewKeySetting))
	if err != nil {
		return err
	}
	return fn(cred)
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show whether a key is configured (masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCredential(cmd, func(cred *preview.Credential) error {
			if !cred.Configured() {
				cyan.Println("No preview key configured, titles are derived from domains.")
				return nil
			}
			bold.Print("Preview key: ")
			green.Println(cred.Masked())
			return nil
		})
	},
}

var keySetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store a new preview key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCredential(cmd, func(cred *preview.Credential) error {
			if err := cred.Set(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !cred.Configured() {
				cyan.Println("Blank key given, preview key cleared.")
				return nil
			}
			green.Println("✅ Preview key saved:", cred.Masked())
			return nil
		})
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the preview key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCredential(cmd, func(cred *preview.Credential) error {
			if err := cred.Clear(cmd.Context()); err != nil {
				return err
			}
			green.Println("✅ Preview key cleared")
			return nil
		})
	},
}
