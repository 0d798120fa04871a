package main

import (
	"fmt"
	"os"
	"path/filepath"

	"sitekeeper/internal/app"
	"sitekeeper/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a SiteApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "UploadFile", "BanAccount").
func newApp(operation string) (*app.SiteApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewSiteApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "sitekeeper",
	Short: "Per-account static site storage manager",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
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
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:        %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		fmt.Printf("Storage Root:    %s\n", cfg.Storage.Root)
		fmt.Printf("Quarantine Root: %s\n", cfg.Storage.QuarantineRoot)
		fmt.Printf("Max Space:       %d bytes\n", cfg.Quota.MaxSpace)
		fmt.Printf("Entry Page:      %s\n", cfg.Content.EntryPage)
		fmt.Printf("Database:        %s\n", cfg.Database.Type)
		fmt.Printf("Screenshots:     %s\n", cfg.Screenshots.Type)
		fmt.Printf("Network Policy:  %s\n", cfg.Network.Type)
		return nil
	},
}

// account command
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create USERNAME",
	Short: "Create an account and scaffold its site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		ip, _ := cmd.Flags().GetString("ip")
		nsfw, _ := cmd.Flags().GetBool("nsfw")

		a, err := newApp("CreateAccount")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.CreateAccount(args[0], email, ip, nsfw); err != nil {
			return fmt.Errorf("creating account: %w", err)
		}

		fmt.Printf("Created account: %s\n", args[0])
		return nil
	},
}

var accountRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RenameAccount")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RenameAccount(args[0], args[1]); err != nil {
			return fmt.Errorf("renaming account: %w", err)
		}

		fmt.Printf("Renamed %s to %s\n", args[0], args[1])
		return nil
	},
}

var accountBanCmd = &cobra.Command{
	Use:   "ban USERNAME",
	Short: "Ban an account and quarantine its site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		byIP, _ := cmd.Flags().GetBool("by-ip")

		a, err := newApp("BanAccount")
		if err != nil {
			return err
		}
		defer a.Close()

		if byIP {
			count, err := a.BanAccountsByIP(args[0])
			if err != nil {
				return fmt.Errorf("banning by address: %w", err)
			}
			fmt.Printf("Banned %d account(s)\n", count)
			return nil
		}

		if err := a.BanAccount(args[0]); err != nil {
			return fmt.Errorf("banning account: %w", err)
		}

		fmt.Printf("Banned account: %s\n", args[0])
		return nil
	},
}

var accountNSFWCmd = &cobra.Command{
	Use:   "nsfw USERNAME",
	Short: "Mark an account as NSFW",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("MarkNSFW")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.MarkNSFW(args[0]); err != nil {
			return fmt.Errorf("marking account: %w", err)
		}

		fmt.Printf("Marked account as NSFW: %s\n", args[0])
		return nil
	},
}

// file command
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage site files",
}

var fileUploadCmd = &cobra.Command{
	Use:   "upload USERNAME PATH",
	Short: "Upload a local file to a site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UploadFile")
		if err != nil {
			return err
		}
		defer a.Close()

		stored, err := a.UploadFile(args[0], args[1])
		if err != nil {
			return fmt.Errorf("uploading: %w", err)
		}

		fmt.Printf("Uploaded %s\n", stored)
		return nil
	},
}

var fileSaveCmd = &cobra.Command{
	Use:   "save USERNAME FILENAME PATH",
	Short: "Replace a stored file's content from a local file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SaveFile")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SaveFile(args[0], args[1], args[2]); err != nil {
			return fmt.Errorf("saving: %w", err)
		}

		fmt.Printf("Saved %s\n", args[1])
		return nil
	},
}

var fileDeleteCmd = &cobra.Command{
	Use:   "delete USERNAME FILENAME",
	Short: "Delete a stored file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteFile")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteFile(args[0], args[1]); err != nil {
			return fmt.Errorf("deleting: %w", err)
		}

		fmt.Printf("Deleted %s\n", args[1])
		return nil
	},
}

var fileListCmd = &cobra.Command{
	Use:   "list USERNAME",
	Short: "List a site's stored files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListFiles")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.ListFiles(args[0])
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No files found.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%10d  %s\n", e.Size, e.Name)
		}
		return nil
	},
}

var fileDownloadCmd = &cobra.Command{
	Use:   "download USERNAME FILENAME [DEST]",
	Short: "Download a stored file",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DownloadFile")
		if err != nil {
			return err
		}
		defer a.Close()

		dest := args[1]
		if len(args) > 2 {
			dest = args[2]
		}
		absDest, err := filepath.Abs(dest)
		if err != nil {
			return fmt.Errorf("resolving destination: %w", err)
		}

		out, err := os.Create(absDest)
		if err != nil {
			return fmt.Errorf("creating destination file: %w", err)
		}
		defer out.Close()

		if err := a.DownloadFile(args[0], args[1], out); err != nil {
			os.Remove(absDest)
			return fmt.Errorf("downloading: %w", err)
		}

		fmt.Printf("Downloaded %s to %s\n", args[1], absDest)
		return nil
	},
}

// page command
var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Manage site pages",
}

var pageCreateCmd = &cobra.Command{
	Use:   "create USERNAME NAME",
	Short: "Scaffold a new page",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CreatePage")
		if err != nil {
			return err
		}
		defer a.Close()

		filename, err := a.CreatePage(args[0], args[1])
		if err != nil {
			return fmt.Errorf("creating page: %w", err)
		}

		fmt.Printf("Created page: %s\n", filename)
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export USERNAME [DEST]",
	Short: "Export a site as a zip archive",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ExportArchive")
		if err != nil {
			return err
		}
		defer a.Close()

		archive, err := a.ExportArchive(args[0])
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}

		dest := args[0] + ".zip"
		if len(args) > 1 {
			dest = args[1]
		}
		absDest, err := filepath.Abs(dest)
		if err != nil {
			return fmt.Errorf("resolving destination: %w", err)
		}

		if err := os.WriteFile(absDest, archive, 0644); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}

		fmt.Printf("Exported %d bytes to %s\n", len(archive), absDest)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// account subcommands
	accountCmd.AddCommand(accountCreateCmd)
	accountCreateCmd.Flags().String("email", "", "Contact email for the account")
	accountCreateCmd.Flags().String("ip", "", "Registration address for the account")
	accountCreateCmd.Flags().Bool("nsfw", false, "Mark the account NSFW at creation")
	accountCmd.AddCommand(accountRenameCmd)
	accountCmd.AddCommand(accountBanCmd)
	accountBanCmd.Flags().Bool("by-ip", false, "Ban every account sharing this account's address")
	accountCmd.AddCommand(accountNSFWCmd)

	// file subcommands
	fileCmd.AddCommand(fileUploadCmd)
	fileCmd.AddCommand(fileSaveCmd)
	fileCmd.AddCommand(fileDeleteCmd)
	fileCmd.AddCommand(fileListCmd)
	fileCmd.AddCommand(fileDownloadCmd)

	// page subcommands
	pageCmd.AddCommand(pageCreateCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(exportCmd)
}
