package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// keyPages tells users where each provider issues keys
var keyPages = map[string]string{
	"openai": "https://platform.openai.com/api-keys",
	"claude": "https://console.anthropic.com/settings/keys",
	"gemini": "https://aistudio.google.com/app/apikey",
}

// ShowKeyGuide prints where to create a key for provider
func ShowKeyGuide(w io.Writer, provider string) {
	provider = canonicalProvider(provider)
	fmt.Fprintf(w, "scoreahack needs a %s API key to summarise and compare projects.\n", provider)
	if page, ok := keyPages[provider]; ok {
		fmt.Fprintf(w, "Create one at %s\n", page)
	}
	fmt.Fprintln(w, "The key is stored in your system keychain, or an encrypted file when no keychain is available.")
	fmt.Fprintln(w)
}

// ReadSecret prompts on w and reads a line without echo when in is a
// terminal.
func ReadSecret(w io.Writer, in *os.File, prompt string) (string, error) {
	fmt.Fprint(w, prompt)

	if term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
