package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scoreahack/pkg/auth"
	"scoreahack/pkg/config"
	"scoreahack/pkg/llm"
	"scoreahack/pkg/ui"
)

var apiKeyFlag string

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage model provider API keys",
	Long: `Manage stored model provider API keys.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

Ollama runs locally and needs no key.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [provider]",
	Short: "Store an API key securely",
	Long: `Store a model provider API key in the system keychain or encrypted file.

The provider defaults to the one in your configuration (openai unless set).
You will be prompted for the key; input is hidden when reading from a
terminal.`,
	Example: `  # Interactive login for the configured provider
  scoreahack auth login

  # Store a Claude key from a script
  echo "$KEY" | scoreahack auth login claude`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [provider]",
	Short: "Remove a stored API key",
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored keys and which one will be used",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVar(&apiKeyFlag, "key", "", "API key to store (skips the prompt)")
}

// configuredProvider is the provider named on the command line or in config
func configuredProvider(args []string) string {
	if len(args) > 0 {
		return llm.NormalizeProvider(args[0])
	}
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return llm.ProviderOpenAI
	}
	return llm.NormalizeProvider(cfg.LLM.Provider)
}

func newManager() *auth.Manager {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}
	return manager
}

func runLogin(cmd *cobra.Command, args []string) {
	provider := configuredProvider(args)
	if provider == llm.ProviderOllama {
		ui.PrintWarning("Ollama runs locally and needs no API key")
		return
	}

	manager := newManager()

	if existing, err := manager.Retrieve(provider); err == nil && apiKeyFlag == "" && stderrIsTerminal() {
		fmt.Fprintf(os.Stderr, "A %s key is already stored (%s). Replace it? (y/N): ", provider, auth.MaskKey(existing.APIKey))
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			return
		}
	}

	key := apiKeyFlag
	if key == "" {
		if stderrIsTerminal() {
			auth.ShowKeyGuide(os.Stderr, provider)
		}
		var err error
		key, err = auth.ReadSecret(os.Stderr, os.Stdin, fmt.Sprintf("%s API key: ", provider))
		if err != nil {
			ui.PrintError("Failed to read API key", err.Error())
			os.Exit(1)
		}
	}

	if err := manager.Store(&auth.Credential{Provider: provider, APIKey: key}); err != nil {
		ui.PrintError("Failed to store API key", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Stored %s key %s", provider, auth.MaskKey(strings.TrimSpace(key))))
	ui.PrintInfo("Stores", strings.Join(manager.StoreNames(), ", "))
}

func runLogout(cmd *cobra.Command, args []string) {
	provider := configuredProvider(args)
	manager := newManager()

	if err := manager.Delete(provider); err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			ui.PrintWarning("No stored key for " + provider)
			return
		}
		ui.PrintError("Failed to remove API key", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Removed stored key for " + provider)
}

func runStatus(cmd *cobra.Command, args []string) {
	manager := newManager()

	creds, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list keys", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Stores", strings.Join(manager.StoreNames(), ", "))
	if len(creds) == 0 {
		ui.PrintWarning("No API keys stored. Run 'scoreahack auth login'")
	}
	for _, c := range creds {
		c = auth.Sanitize(c)
		updated := "from environment"
		if !c.LastModified.IsZero() {
			updated = "updated " + c.LastModified.Format(time.RFC822)
		}
		fmt.Printf("  %-8s %s  %s\n", c.Provider, c.APIKey, ui.Dim(updated))
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return
	}
	provider := llm.NormalizeProvider(cfg.LLM.Provider)
	fmt.Println()
	ui.PrintInfo("Configured provider", provider)
	switch {
	case provider == llm.ProviderOllama:
		ui.PrintSuccess("No key needed")
	case cfg.LLM.APIKey != "":
		ui.PrintSuccess("Key set in configuration or environment")
	case manager.ResolveAPIKey(&cfg.LLM):
		ui.PrintSuccess("Using stored key")
	default:
		ui.PrintWarning("No key available for " + provider)
	}
}
