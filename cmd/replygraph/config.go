package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/replygraph/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage replygraph configuration",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration and validate it",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(".replygraph", "config.yaml")
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Default().Save(path); err != nil {
		return err
	}

	fmt.Printf("✅ Wrote %s\n", path)
	fmt.Printf("Set NEO4J_PASSWORD and POSTGRES_DSN in .env rather than in the file.\n")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}
	fmt.Print(string(data))

	result := cfg.Validate(config.ValidationContextAll)
	if result.HasErrors() {
		fmt.Println()
		fmt.Print(result.Error())
		return nil
	}
	for _, warn := range result.Warnings {
		fmt.Printf("⚠️  %s\n", warn)
	}
	return nil
}
