package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ipal-monitor/internal/config"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validasi file konfigurasi",
	Long:  "Memuat dan memvalidasi file konfigurasi: format, field wajib, rentang nilai dan ambang batas.",
	Run:   runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()

	// Load calls Validate
	if _, err := config.Load(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Validasi konfigurasi gagal: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Konfigurasi valid: %s\n", configPath)
}
