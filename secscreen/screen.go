// Package secscreen inspects submissions for adversarial content before any
// judge sees them. Policy is sanitize-first: strippable directive fragments
// are redacted and the round proceeds; role-impersonation and prompt-probe
// patterns block the round outright.
package secscreen

import (
	"net/url"
	"regexp"
	"strings"
)

type Severity int

const (
	// SevStrip patterns are redacted from the notes and the round proceeds.
	SevStrip Severity = iota
	// SevBlock patterns abort the round before fan-out.
	SevBlock
)

// Analysis is the screening verdict for one submission.
type Analysis struct {
	Flagged     bool
	Blocked     bool
	Reasons     []string
	ContentType string

	// SanitizedNotes is the notes text with SevStrip fragments redacted.
	// Judges must receive this, never the raw notes, when Flagged is true.
	SanitizedNotes string
}

type pattern struct {
	re       *regexp.Regexp
	reason   string
	severity Severity
}

var patterns = []pattern{
	// instruction overrides aimed at the evaluator
	{regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions`),
		"instruction override attempt", SevStrip},
	{regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|the)\s+(instructions|rules|rubric)`),
		"instruction override attempt", SevStrip},
	{regexp.MustCompile(`(?i)forget\s+(everything|all prior|your instructions)`),
		"instruction override attempt", SevStrip},
	{regexp.MustCompile(`(?i)new\s+instructions\s*:`),
		"embedded directive", SevStrip},
	{regexp.MustCompile(`(?i)(always|you must|please)\s+(vote\s+)?approve\s+this`),
		"verdict coercion", SevStrip},
	{regexp.MustCompile(`(?i)respond\s+with\s+.{0,40}"?vote"?\s*:\s*true`),
		"verdict coercion", SevStrip},

	// system-role impersonation and prompt probing
	{regexp.MustCompile(`(?i)\[\s*system\s*\]|<\s*system\s*>|^\s*system\s*:`),
		"system role impersonation", SevBlock},
	{regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|the)\b`),
		"system role impersonation", SevBlock},
	{regexp.MustCompile(`(?i)(reveal|print|repeat|output)\s+(your\s+)?(system\s+prompt|hidden\s+instructions)`),
		"prompt exfiltration attempt", SevBlock},
}

const redaction = "[redacted]"

var codeHosts = []string{"github.com", "gitlab.com", "bitbucket.org", "codeberg.org"}
var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com", "loom.com", "twitch.tv"}
var socialHosts = []string{"twitter.com", "x.com", "instagram.com", "tiktok.com", "linkedin.com", "facebook.com"}

// Screen inspects the submission's free-text fields and classifies the content
// type so judges can pick provider-native retrieval strategies.
func Screen(submissionURL string, submissionNotes string) Analysis {
	analysis := Analysis{
		ContentType:    Classify(submissionURL),
		SanitizedNotes: submissionNotes,
	}

	combined := submissionURL + "\n" + submissionNotes
	for _, p := range patterns {
		if !p.re.MatchString(combined) {
			continue
		}
		analysis.Flagged = true
		analysis.Reasons = append(analysis.Reasons, p.reason)
		if p.severity == SevBlock {
			analysis.Blocked = true
			continue
		}
		analysis.SanitizedNotes = p.re.ReplaceAllString(analysis.SanitizedNotes, redaction)
	}

	return analysis
}

// Classify maps the submission URL host to a coarse content type.
func Classify(submissionURL string) string {
	u, err := url.Parse(strings.TrimSpace(submissionURL))
	if err != nil || u.Host == "" {
		return "generic"
	}
	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))

	switch {
	case hostIn(host, codeHosts):
		return "code"
	case hostIn(host, videoHosts):
		return "video"
	case hostIn(host, socialHosts):
		return "social"
	}
	return "generic"
}

func hostIn(host string, list []string) bool {
	for _, h := range list {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
