package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup — writes .env in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup()
		},
	}
}

// stdinReader is shared across all prompts. term.ReadPassword bypasses it via raw fd.
var stdinReader = bufio.NewReader(os.Stdin)

func runSetup() error {
	fmt.Println("GreenPrompt setup")
	fmt.Println("─────────────────")

	port, err := askDefault("Port", "8080")
	if err != nil {
		return fmt.Errorf("setup: port: %w", err)
	}
	dbPath, err := askDefault("Database path", "greenprompt.db")
	if err != nil {
		return fmt.Errorf("setup: db path: %w", err)
	}
	region, err := askDefault("Default region (us-west, us-east, eu-west, eu-north, asia-pacific)", "us-west")
	if err != nil {
		return fmt.Errorf("setup: region: %w", err)
	}

	salt, err := askSalt()
	if err != nil {
		return fmt.Errorf("setup: salt: %w", err)
	}

	tgToken, err := askDefault("Telegram bot token (empty disables alerts)", "")
	if err != nil {
		return fmt.Errorf("setup: telegram token: %w", err)
	}
	tgChat := ""
	if tgToken != "" {
		if tgChat, err = askDefault("Telegram chat ID", ""); err != nil {
			return fmt.Errorf("setup: telegram chat: %w", err)
		}
	}

	lines := []string{
		"PORT=" + port,
		"DB_PATH=" + dbPath,
		"API_KEY_SALT=" + salt,
		"DEFAULT_REGION=" + region,
		"RETENTION_DAYS=365",
		"RATE_LIMIT_PER_MINUTE=60",
		"TELEGRAM_TOKEN=" + tgToken,
		"TELEGRAM_CHAT_ID=" + tgChat,
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(".env", []byte(content), 0600); err != nil {
		return fmt.Errorf("setup: write .env: %w", err)
	}

	fmt.Println()
	fmt.Println("Wrote .env — start the server with 'greenprompt serve',")
	fmt.Println("then create a key with 'greenprompt apikey create --owner you'.")
	return nil
}

// askSalt reads the API key salt without echoing, generating a random one
// when the operator just presses enter.
func askSalt() (string, error) {
	fmt.Print("API key salt (hidden, empty generates a random one): ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("ReadPassword: %w", err)
	}
	salt := strings.TrimSpace(string(raw))
	if salt != "" {
		return salt, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	fmt.Println("Generated a random salt.")
	return hex.EncodeToString(buf), nil
}

func askDefault(label, fallback string) (string, error) {
	if fallback != "" {
		fmt.Printf("%s [%s]: ", label, fallback)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}
