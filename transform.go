package bcapture

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Rule is a pure rewrite of captured text.
type Rule func(string) string

// Pipeline applies its rules in order.
type Pipeline []Rule

// Apply runs text through every rule of the pipeline.
func (p Pipeline) Apply(text string) string {
	return lo.Reduce(p, func(acc string, r Rule, _ int) string {
		return r(acc)
	}, text)
}

const (
	// DefaultAtToken replaces "@" in obfuscated addresses.
	DefaultAtToken = "[AT]"
	// DefaultDotToken replaces "." in obfuscated addresses.
	DefaultDotToken = "[DOT]"
)

// emailPattern matches local-part@domain where the local part is dot separated segments of
// letters, digits, '_' and '-', and the domain ends in a label of at least two letters.
var emailPattern = regexp.MustCompile(`[_A-Za-z0-9-]+(\.[_A-Za-z0-9-]+)*@[A-Za-z0-9]+(\.[A-Za-z0-9]+)*\.[A-Za-z]{2,}`)

// EmailObfuscator rewrites email addresses so they are harder to harvest: every "@" and "."
// inside an address is replaced by a token. Text outside addresses is left alone.
type EmailObfuscator struct {
	repl *strings.Replacer
}

// NewEmailObfuscator inits an obfuscator with the given tokens. Empty tokens fall back to
// [DefaultAtToken] and [DefaultDotToken].
func NewEmailObfuscator(atToken, dotToken string) *EmailObfuscator {
	if atToken == "" {
		atToken = DefaultAtToken
	}

	if dotToken == "" {
		dotToken = DefaultDotToken
	}

	return &EmailObfuscator{repl: strings.NewReplacer("@", atToken, ".", dotToken)}
}

// Obfuscate returns text with every email address obfuscated.
func (o *EmailObfuscator) Obfuscate(text string) string {
	return emailPattern.ReplaceAllStringFunc(text, o.repl.Replace)
}

// Rule returns the obfuscator as a pipeline rule.
func (o *EmailObfuscator) Rule() Rule { return o.Obfuscate }
