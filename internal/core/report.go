package core

import (
	"regexp"
	"strings"

	"rewin/internal/policies"
	"rewin/internal/types"
)

var (
	markdownLinkURL = regexp.MustCompile(`\]\((https?://[^\s\)]+|winget://[^\s\)]+)\)`)
	bareURL         = regexp.MustCompile(`(?:https?|winget)://[^\s\)\],]+`)
	sectionHeader   = regexp.MustCompile(`(?m)^### `)
)

type ReportParser struct {
	Policy policies.CandidatePolicy
}

func NewReportParser() ReportParser {
	return ReportParser{Policy: policies.NewCandidatePolicy()}
}

// Parse extracts download candidates from a resolver markdown report. Link
// targets and bare URLs are collected together, deduplicated in order of
// first appearance, and each URL is attributed to the `###` section it
// appears under.
func (p ReportParser) Parse(text string) types.ResolverReport {
	report := types.ResolverReport{
		Text:      text,
		ItemCount: len(sectionHeader.FindAllStringIndex(text, -1)),
	}
	seen := map[string]struct{}{}
	section := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "### ") {
			section = strings.TrimSpace(strings.TrimPrefix(line, "### "))
		}
		for _, url := range lineURLs(line) {
			if p.Policy.IsPlaceholder(url) {
				continue
			}
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
			report.URLs = append(report.URLs, url)
			report.Candidates = append(report.Candidates, types.ManualDownloadCandidate{
				SourceName:     section,
				URL:            url,
				Classification: p.Policy.Classify(url),
			})
		}
	}
	return report
}

func lineURLs(line string) []string {
	var urls []string
	for _, match := range markdownLinkURL.FindAllStringSubmatch(line, -1) {
		urls = append(urls, match[1])
	}
	urls = append(urls, bareURL.FindAllString(line, -1)...)
	return urls
}
