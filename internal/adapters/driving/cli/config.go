package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage docweave configuration",
	Long: `View and set configuration values such as the corpus source,
embedding provider and retrieval defaults.

Keys use dotted notation, e.g.:
  source.type          github or filesystem
  source.owner         GitHub repository owner
  source.repo          GitHub repository name
  source.branch        GitHub branch (empty for the default)
  source.root          directory for filesystem sources
  github.token         GitHub access token
  embedding.provider   openai or ollama
  embedding.model      embedding model name
  embedding.api_key    provider API key
  embedding.strict     fail rebuilds on embedding errors
  retrieval.k          default number of search results
  retrieval.min_relevance  default enhanced-search threshold`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value. When the value is omitted it is read
from the terminal; secret keys are read without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

// shownKeys is the display order for 'config show'.
var shownKeys = []string{
	"source.type",
	"source.owner",
	"source.repo",
	"source.branch",
	"source.path_prefix",
	"source.root",
	"github.token",
	"embedding.provider",
	"embedding.model",
	"embedding.api_key",
	"embedding.base_url",
	"embedding.strict",
	"retrieval.k",
	"retrieval.min_relevance",
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Configuration")
	cmd.Println("=============")
	for _, key := range shownKeys {
		value, ok := configStore.Get(key)
		if !ok {
			continue
		}
		if secretKey(key) {
			value = maskSecret(fmt.Sprintf("%v", value))
		}
		cmd.Printf("  %-24s %v\n", key, value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}

	if secretKey(args[0]) {
		value = maskSecret(fmt.Sprintf("%v", value))
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	var raw string
	if len(args) == 2 {
		raw = args[1]
	} else {
		cmd.Printf("Enter value for %s: ", key)
		if secretKey(key) {
			raw = readSecret()
			cmd.Println()
		} else {
			raw = readLine(bufio.NewReader(os.Stdin))
		}
	}
	if raw == "" {
		return errors.New("value must not be empty")
	}

	if err := configStore.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s.\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if err := configStore.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}

	cmd.Printf("Unset %s.\n", args[0])
	return nil
}

// parseValue converts flag-style input into a typed config value.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// secretKey reports whether a key holds a credential.
func secretKey(key string) bool {
	return strings.HasSuffix(key, ".token") || strings.HasSuffix(key, ".api_key")
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
