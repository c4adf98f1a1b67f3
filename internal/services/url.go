package services

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NormalizeServerURL trims the URL and prefixes https:// when no scheme is
// present. An empty input stays empty so the validator can report it.
func NormalizeServerURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return url
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	return url
}

// validateProjectInputs checks the create-project inputs. The inputs are
// expected trimmed and the URL normalized. All failures carry ErrValidation
// and the product's user-facing message.
func validateProjectInputs(name, enterKey, serverURL string) error {
	err := validation.Errors{
		"name":      validation.Validate(name, validation.Required.Error("project name cannot be empty")),
		"enter_key": validation.Validate(enterKey, validation.Required.Error("enter key cannot be empty")),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return validateServerURL(serverURL)
}

// validateServerURL checks a normalized URL: a recognized scheme followed
// by something that looks like a domain or path.
func validateServerURL(serverURL string) error {
	if serverURL == "" {
		return fmt.Errorf("%w: server URL cannot be empty", ErrValidation)
	}

	rest, ok := strings.CutPrefix(serverURL, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(serverURL, "http://")
	}
	if !ok {
		return fmt.Errorf("%w: server URL must be a valid URL", ErrValidation)
	}

	if !strings.ContainsAny(rest, "./") {
		return fmt.Errorf("%w: server URL must contain a valid domain or path", ErrValidation)
	}

	return nil
}
