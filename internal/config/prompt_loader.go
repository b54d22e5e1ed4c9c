package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"contactform/pkg/categorizer"
)

// defaultPromptDir is the subdirectory within the user's home directory.
const defaultPromptDir = ".config/contactform/prompts"

// LoadPromptContent resolves the configured prompt template and reads it.
// An empty path returns the built-in template. A relative path is treated as
// a filename within ~/.config/contactform/prompts/.
func LoadPromptContent(configuredPath string) (string, error) {
	if configuredPath == "" {
		return categorizer.DefaultPromptTemplate, nil
	}

	finalPath := configuredPath
	if !filepath.IsAbs(configuredPath) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		finalPath = filepath.Join(homeDir, defaultPromptDir, configuredPath)
	}

	promptBytes, err := os.ReadFile(finalPath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file '%s': %w", finalPath, err)
	}

	prompt := string(promptBytes)
	if !strings.Contains(prompt, categorizer.MessagePlaceholder) {
		log.Warnf("Prompt template '%s' has no %s placeholder; the message will not be sent to the model", finalPath, categorizer.MessagePlaceholder)
	}
	return prompt, nil
}
