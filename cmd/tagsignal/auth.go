package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tagsignal/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage platform credentials",
	Long: `Manage stored platform credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store platform credentials securely",
	Long: `Store platform login credentials in the system keychain or an
encrypted file. You will be prompted for the password; it is never echoed
and never written to a config file.`,
	Example: `  # Interactive login
  tagsignal auth login

  # Login with username
  tagsignal auth login myhandle`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <username>",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	Run:   runLogout,
}

// listAccountsCmd represents the auth list command
var listAccountsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with passwords masked.`,
	Run:   runListAccounts,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listAccountsCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	reader := bufio.NewReader(os.Stdin)

	var username string
	if len(args) == 1 {
		username = args[0]
	} else {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		fmt.Fprintln(os.Stderr, "Error: username is required")
		os.Exit(1)
	}

	fmt.Print("Password: ")
	passBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	password := strings.TrimSpace(string(passBytes))
	if password == "" {
		fmt.Fprintln(os.Stderr, "Error: password is required")
		os.Exit(1)
	}

	fmt.Print("User agent (optional, press Enter to skip): ")
	uaLine, _ := reader.ReadString('\n')
	userAgent := strings.TrimSpace(uaLine)

	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	account := &auth.Account{
		Username:  username,
		Password:  password,
		UserAgent: userAgent,
	}
	if err := manager.Store(account); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Credentials stored for %s\n", username)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := manager.Delete(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Credentials removed for %s\n", args[0])
}

func runListAccounts(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(accounts) == 0 {
		fmt.Println("No stored accounts.")
		return
	}

	fmt.Println("Stored accounts:")
	for _, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("  %s  (password %s, modified %s)\n",
			sanitized.Username, sanitized.Password,
			sanitized.LastModified.Format("2006-01-02 15:04"))
	}
}
