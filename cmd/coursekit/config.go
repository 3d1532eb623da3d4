package main

import (
	"fmt"
	"os"

	"coursekit/internal/app"
	"coursekit/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and the local workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if err := app.InitWorkspace(cfg); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := readConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("API:        %s %s%s\n", cfg.API.Type, cfg.API.BaseURL, cfg.API.FSRoot)
		fmt.Printf("Drafts:     %s %s%s\n", cfg.Drafts.Type, cfg.Drafts.Dir, s3Location(cfg.Drafts))
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Encryption: %s %s\n", cfg.Encryption.Type, cfg.Encryption.PublicKeyPath)
		return nil
	},
}

func s3Location(cfg config.DraftsConfig) string {
	if cfg.Type != "s3" {
		return ""
	}
	return "s3://" + cfg.S3Bucket + "/" + cfg.S3Prefix
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate the key pair that protects the API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := readConfig()
		if err != nil {
			return err
		}

		pass, err := app.ReadPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		if _, ok := os.LookupEnv(app.EnvPassphrase); !ok {
			confirm, err := app.ReadSecret("Repeat passphrase: ")
			if err != nil {
				return err
			}
			if confirm != pass {
				return fmt.Errorf("passphrases do not match")
			}
		}

		if err := app.SetupKeys(cfg, pass); err != nil {
			return err
		}
		fmt.Printf("Keys written to %s\n", cfg.Encryption.PublicKeyPath)
		return nil
	},
}

var configTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store the API bearer token (read from stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := readConfig()
		if err != nil {
			return err
		}

		token, err := app.ReadSecret("API token: ")
		if err != nil {
			return err
		}
		if err := app.StoreToken(cfg, token); err != nil {
			return err
		}
		fmt.Printf("Token stored at %s\n", cfg.API.TokenPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configTokenCmd)
}
