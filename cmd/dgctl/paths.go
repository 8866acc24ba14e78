package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/datagenesis-ai/dgctl/internal/auth"
	"github.com/datagenesis-ai/dgctl/internal/config"
	"github.com/datagenesis-ai/dgctl/internal/output"
	"github.com/datagenesis-ai/dgctl/internal/paths"
)

// PathsInfo holds all resolved paths for JSON output.
type PathsInfo struct {
	ConfigRoot  string `json:"config_root"`
	StateRoot   string `json:"state_root"`
	ConfigFile  string `json:"config_file"`
	Credentials string `json:"credentials"`
	ModelConfig string `json:"model_config"`
	LogFile     string `json:"log_file"`
	APIURL      string `json:"api_url"`
	StreamURL   string `json:"stream_url"`
	AuthSource  string `json:"auth_source"`
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show where dgctl stores files",
		Long: `Display all file and directory paths used by dgctl.

Useful for debugging, scripting, and understanding where configuration,
state, and credential files are stored on this system.`,
		Example: `  dgctl paths
  dgctl paths --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			info := resolvePathsInfo()

			if out.JSON {
				return out.PrintJSON(info)
			}

			out.Print("Config root:    %s\n", info.ConfigRoot)
			out.Print("State root:     %s\n", info.StateRoot)
			out.Print("\n")
			out.Print("Config file:    %s\n", info.ConfigFile)
			out.Print("Credentials:    %s\n", info.Credentials)
			out.Print("Model config:   %s\n", info.ModelConfig)
			out.Print("Log file:       %s\n", info.LogFile)
			out.Print("\n")
			out.Print("API URL:        %s\n", info.APIURL)
			out.Print("Stream URL:     %s\n", info.StreamURL)
			out.Print("Auth source:    %s\n", info.AuthSource)

			return nil
		},
	}
}

func resolvePathsInfo() PathsInfo {
	info := PathsInfo{}

	info.StateRoot = resolveOrError(paths.StateRoot)
	info.LogFile = resolveOrError(paths.DefaultLogFile)
	info.Credentials = resolveOrError(paths.CredentialsFile)
	info.ModelConfig = resolveOrError(paths.ModelConfigFile)

	if root, err := paths.ConfigRoot(); err == nil {
		info.ConfigRoot = root
		info.ConfigFile = filepath.Join(root, "config.yaml")
	} else {
		info.ConfigRoot = fmt.Sprintf("<error: %v>", err)
		info.ConfigFile = info.ConfigRoot
	}

	cfg := config.Load()
	info.APIURL = cfg.APIURL()
	info.StreamURL = cfg.StreamURL()

	source, _ := auth.GetCredentials()
	if source == auth.SourceNone {
		info.AuthSource = "none"
	} else {
		info.AuthSource = string(source)
	}

	return info
}

func resolveOrError(fn func() (string, error)) string {
	val, err := fn()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}

	return val
}
