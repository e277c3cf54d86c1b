package site

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/cosmodrome/internal/config"
)

// Route is the treatment a source file receives.
type Route int

const (
	// RouteIgnore skips hidden entries.
	RouteIgnore Route = iota
	// RouteMarkup transpiles to HTML and wraps the source for the capsule.
	RouteMarkup
	// RouteVerbatimCopy copies the file unchanged into both trees.
	RouteVerbatimCopy
)

var routeNames = map[Route]string{
	RouteIgnore:       "ignore",
	RouteMarkup:       "markup",
	RouteVerbatimCopy: "copy",
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return "unknown"
}

// Router decides the Route of an entry from its base name alone.
type Router struct {
	HiddenPrefix    string
	MarkupExtension string
}

// NewRouter returns the router for cfg.
func NewRouter(cfg *config.Config) Router {
	return Router{HiddenPrefix: cfg.HiddenPrefix, MarkupExtension: cfg.MarkupExtension}
}

// Hidden reports whether name is excluded from publication. It applies to
// directories and files alike.
func (r Router) Hidden(name string) bool {
	return r.HiddenPrefix != "" && strings.HasPrefix(name, r.HiddenPrefix)
}

// Route classifies a file name. The extension comparison is case sensitive.
func (r Router) Route(name string) Route {
	switch {
	case r.Hidden(name):
		return RouteIgnore
	case filepath.Ext(name) == "."+r.MarkupExtension:
		return RouteMarkup
	default:
		return RouteVerbatimCopy
	}
}
