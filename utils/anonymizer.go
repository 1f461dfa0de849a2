package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Anonymizer masks personal and secret data in chat logs before they leave
// the machine and restores it in the returned analysis
type Anonymizer struct {
	mu             sync.RWMutex
	enabled        bool
	mapping        map[string]string // anonymized -> original
	reverseMapping map[string]string // original -> anonymized
	patterns       []AnonymizationPattern
}

// AnonymizationPattern defines a pattern to detect and anonymize
type AnonymizationPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string // Template for replacement, e.g., "URL_%s", "EMAIL_%s"
	Priority    int    // Higher priority patterns are processed first
}

// NewAnonymizer creates a new anonymizer with the default patterns
func NewAnonymizer(enabled bool) *Anonymizer {
	a := &Anonymizer{
		enabled:        enabled,
		mapping:        make(map[string]string),
		reverseMapping: make(map[string]string),
	}

	a.patterns = []AnonymizationPattern{
		{
			Name:        "Bearer Token",
			Regex:       regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-\.]{20,}`),
			Replacement: "BEARER_TOKEN_%s",
			Priority:    100,
		},
		{
			Name:        "API Key",
			Regex:       regexp.MustCompile(`(?i)(api[_\-\s]?key|access[_\-\s]?key|secret[_\-\s]?key)[\s:=]+[a-zA-Z0-9_\-]{20,}`),
			Replacement: "API_KEY_%s",
			Priority:    95,
		},
		{
			Name:        "URL with Auth",
			Regex:       regexp.MustCompile(`https?://[^:\s]+:[^@\s]+@[^\s\)\"\']+`),
			Replacement: "URL_WITH_AUTH_%s",
			Priority:    80,
		},
		{
			Name:        "URL",
			Regex:       regexp.MustCompile(`https?://[^\s\)\"\'<>]+`),
			Replacement: "URL_%s",
			Priority:    75,
		},
		{
			Name:        "IPv4 Address",
			Regex:       regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
			Replacement: "IP_ADDRESS_%s",
			Priority:    60,
		},
		{
			Name:        "Email",
			Regex:       regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
			Replacement: "EMAIL_%s",
			Priority:    55,
		},
		{
			Name:        "ID Card",
			Regex:       regexp.MustCompile(`\b[1-9]\d{5}(?:19|20)\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])\d{3}[\dXx]\b`),
			Replacement: "ID_CARD_%s",
			Priority:    52,
		},
		{
			Name:        "Phone Number",
			Regex:       regexp.MustCompile(`(?:\+86[-\s]?)?\b1[3-9]\d{9}\b`),
			Replacement: "PHONE_%s",
			Priority:    50,
		},
	}

	return a
}

// generatePlaceholder creates a consistent placeholder for a value
func (a *Anonymizer) generatePlaceholder(template, value string) string {
	hash := md5.Sum([]byte(value))
	hashStr := hex.EncodeToString(hash[:])[:8]
	return fmt.Sprintf(template, hashStr)
}

// Anonymize replaces sensitive information in the text
func (a *Anonymizer) Anonymize(text string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled || text == "" {
		return text
	}

	result := text
	for _, pattern := range a.patterns {
		for _, original := range pattern.Regex.FindAllString(result, -1) {
			placeholder, exists := a.reverseMapping[original]
			if !exists {
				placeholder = a.generatePlaceholder(pattern.Replacement, original)
				a.mapping[placeholder] = original
				a.reverseMapping[original] = placeholder
			}
			result = strings.ReplaceAll(result, original, placeholder)
		}
	}

	return result
}

// Deanonymize restores original sensitive information in the text
func (a *Anonymizer) Deanonymize(text string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.enabled || text == "" {
		return text
	}

	result := text
	for placeholder, original := range a.mapping {
		result = strings.ReplaceAll(result, placeholder, original)
	}
	return result
}

// Clear clears all stored mappings
func (a *Anonymizer) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mapping = make(map[string]string)
	a.reverseMapping = make(map[string]string)
}

// SetEnabled enables or disables anonymization
func (a *Anonymizer) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether anonymization is enabled
func (a *Anonymizer) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// GetMappingCount returns the number of anonymized values
func (a *Anonymizer) GetMappingCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.mapping)
}

// AddCustomPattern adds a custom anonymization pattern. The replacement
// template must contain a single %s for the value hash.
func (a *Anonymizer) AddCustomPattern(name, regexPattern, replacement string, priority int) error {
	regex, err := regexp.Compile(regexPattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	if strings.Count(replacement, "%s") != 1 {
		return fmt.Errorf("replacement %q must contain exactly one %%s", replacement)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.patterns = append(a.patterns, AnonymizationPattern{
		Name:        name,
		Regex:       regex,
		Replacement: replacement,
		Priority:    priority,
	})
	sort.SliceStable(a.patterns, func(i, j int) bool {
		return a.patterns[i].Priority > a.patterns[j].Priority
	})
	return nil
}
