package parser

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

type hostEntry struct {
	pathPrefix string
	parser     Parser
}

type patternEntry struct {
	pattern *regexp.Regexp
	parser  Parser
}

// Registry maps URLs to site-specific parsers. Hostname (plus optional path
// prefix) matches take priority, then regexp patterns; anything else gets
// the generic fallback. Lookup never fails.
type Registry struct {
	byHost    map[string][]hostEntry
	byPattern []patternEntry
	fallback  Parser
	logger    *slog.Logger
}

// NewRegistry builds the registry with every known site parser registered.
func NewRegistry() *Registry {
	r := &Registry{
		byHost:   make(map[string][]hostEntry),
		fallback: NewGenericParser(),
		logger:   slog.Default().With("component", "parser_registry"),
	}

	r.RegisterHost("rossbus.com", "", NewRossBusParser())
	r.RegisterHost("daimlercoachesnorthamerica.com", "/pre-owned-motor-coaches", NewDaimlerParser())
	r.RegisterHost("microbird.com", "/school-vehicles", NewMicrobirdParser())

	return r
}

// RegisterHost binds a parser to a hostname, optionally narrowed to a path
// prefix. The "www." prefix is ignored when matching.
func (r *Registry) RegisterHost(host, pathPrefix string, p Parser) {
	host = normalizeHost(host)
	r.byHost[host] = append(r.byHost[host], hostEntry{pathPrefix: pathPrefix, parser: p})
}

// RegisterPattern binds a parser to URLs matching a regexp, checked after
// hostname entries.
func (r *Registry) RegisterPattern(pattern *regexp.Regexp, p Parser) {
	r.byPattern = append(r.byPattern, patternEntry{pattern: pattern, parser: p})
}

// Lookup returns the parser for rawURL, falling back to the generic parser
// when nothing more specific is registered.
func (r *Registry) Lookup(rawURL string) Parser {
	u, err := url.Parse(rawURL)
	if err != nil {
		r.logger.Warn("unparseable URL, using generic parser", "url", rawURL, "error", err)
		return r.fallback
	}

	host := normalizeHost(u.Hostname())
	for _, entry := range r.byHost[host] {
		if entry.pathPrefix == "" || strings.HasPrefix(u.Path, entry.pathPrefix) {
			return entry.parser
		}
	}

	for _, entry := range r.byPattern {
		if entry.pattern.MatchString(rawURL) {
			return entry.parser
		}
	}

	r.logger.Debug("no site parser registered, using generic parser", "url", rawURL)
	return r.fallback
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
