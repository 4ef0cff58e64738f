package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptString asks for a value, returning the default when the answer is
// empty. Returns an error if stdin closes.
func PromptString(message, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Printf("? %s [%s]: ", message, defaultValue)
	} else {
		fmt.Printf("? %s: ", message)
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}
	return input, nil
}

// PromptSecret asks for a value with terminal echo disabled, so the
// credential never appears on screen or in scrollback.
func PromptSecret(message string) (string, error) {
	fmt.Printf("? %s: ", message)

	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(value)), nil
}

// IsInteractive returns true if stdin is a terminal and --yes flag is not set
func IsInteractive() bool {
	if IsYesMode() {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}
