package platform

import (
	"regexp"
	"strings"
)

var (
	urlPattern       = regexp.MustCompile(`https?://[^\s]+`)
	learnMorePattern = regexp.MustCompile(`(?i)(?:learn|read)\s+more:\s*`)
	preamblePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^here(?:'|’)?s (?:a|the|your) (?:post|draft|updated post|revised post|version)[^:\n]*:\s*`),
		regexp.MustCompile(`(?i)^sure[,!] here(?:'|’)?s[^:\n]*:\s*`),
		regexp.MustCompile(`(?i)^i(?:'|’)?ve (?:written|drafted|updated)[^:\n]*:\s*`),
	}
)

func ContainsURL(content string) bool {
	return urlPattern.MatchString(content)
}

func findURLs(content string) []string {
	return urlPattern.FindAllString(content, -1)
}

// SplitLearnMore splits text of the form "<title> Learn more: <url>" into its
// title and URL. "Read more" and any casing are accepted. ok is false when no
// delimiter is present.
func SplitLearnMore(text string) (title, url string, ok bool) {
	loc := learnMorePattern.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}

	title = strings.TrimSpace(text[:loc[0]])
	rest := strings.TrimSpace(text[loc[1]:])
	url = rest
	if i := strings.IndexAny(rest, " \t\n"); i >= 0 {
		url = rest[:i]
	}
	return title, url, true
}

// JoinLearnMore is the inverse of SplitLearnMore, used so saved versions stay
// self-contained.
func JoinLearnMore(title, url string) string {
	if url == "" {
		return title
	}
	return title + "\n\nLearn more: " + url
}

// StripAIPreamble removes assistant boilerplate like "Here's a post:" from the
// front of generated text.
func StripAIPreamble(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, p := range preamblePatterns {
		if loc := p.FindStringIndex(trimmed); loc != nil {
			return strings.TrimSpace(trimmed[loc[1]:])
		}
	}
	return trimmed
}

// FirstLine returns the first non-empty line, the fallback title when an AI
// reply for Hacker News carries no "Learn more" delimiter.
func FirstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}
