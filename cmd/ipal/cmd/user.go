package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ipal-monitor/internal/config"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/service"
	"ipal-monitor/internal/store"
)

// Command flags
var (
	userPassword string
	userRole     string
	userEmail    string
)

// userCmd groups account management commands.
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Kelola akun dashboard",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Tambah akun",
	Args:  cobra.ExactArgs(1),
	Run:   runUserAdd,
}

var userImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Impor akun dari file YAML",
	Long: `Mengimpor akun dari file YAML. Akun yang sudah ada dilewati.

Format file:
  users:
    - username: operator1
      password: rahasia123
      role: operator
      email: operator1@example.com`,
	Args: cobra.ExactArgs(1),
	Run:  runUserImport,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "Tampilkan semua akun",
	Run:   runUserList,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userImportCmd, userListCmd)

	userAddCmd.Flags().StringVar(&userPassword, "password", "", "password (minimal 6 karakter)")
	userAddCmd.Flags().StringVar(&userRole, "role", string(model.RoleViewer), "peran (admin, operator, viewer)")
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "alamat email")
	userAddCmd.MarkFlagRequired("password")
}

// openUserService opens the database and runs migrations so user commands work on a fresh file.
func openUserService(ctx context.Context) (*service.UserService, *store.Store) {
	cfg, logger := loadConfig()

	st, err := store.Open(cfg.Database.Path, logger.With().Str("component", "store").Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Gagal membuka database: %v\n", err)
		os.Exit(1)
	}
	if err := service.Bootstrap(ctx, st, cfg); err != nil {
		st.Close()
		fmt.Fprintf(os.Stderr, "❌ Gagal menyiapkan database: %v\n", err)
		os.Exit(1)
	}
	return service.NewUserService(st, logger.With().Str("component", "service").Logger()), st
}

func runUserAdd(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	users, st := openUserService(ctx)
	defer st.Close()

	u, err := users.Create(ctx, service.UserInput{
		Username: args[0],
		Password: userPassword,
		Role:     model.Role(userRole),
		Email:    userEmail,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUser) {
			fmt.Fprintf(os.Stderr, "❌ Username %q sudah ada\n", args[0])
		} else {
			fmt.Fprintf(os.Stderr, "❌ Gagal menambah akun: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("✅ Akun %s (%s) dibuat\n", u.Username, u.Role)
}

func runUserImport(cmd *cobra.Command, args []string) {
	seeds, err := config.LoadUsers(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Gagal membaca file akun: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	users, st := openUserService(ctx)
	defer st.Close()

	result, err := users.Import(ctx, seeds)
	for _, name := range result.Created {
		fmt.Printf("   ✅ %s\n", name)
	}
	for _, name := range result.Skipped {
		fmt.Printf("   ⏭  %s (sudah ada)\n", name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ %d akun dibuat, %d dilewati\n", len(result.Created), len(result.Skipped))
}

func runUserList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	users, st := openUserService(ctx)
	defer st.Close()

	list, err := users.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Gagal memuat akun: %v\n", err)
		os.Exit(1)
	}
	for _, u := range list {
		fmt.Printf("%-4d %-20s %-10s %s\n", u.ID, u.Username, u.Role, u.Email)
	}
}
