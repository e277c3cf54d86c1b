package config

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
)

// Validate checks that the layout can be built without clobbering itself.
func (c *Config) Validate() error {
	required := map[string]string{
		"source_dir":       c.SourceDir,
		"output_dir":       c.OutputDir,
		"markup_extension": c.MarkupExtension,
		"hidden_prefix":    c.HiddenPrefix,
		"placeholder":      c.Placeholder,
		"html.output":      c.HTML.Output,
		"html.extension":   c.HTML.Extension,
		"html.wrapper":     c.HTML.Wrapper,
		"capsule.output":   c.Capsule.Output,
		"capsule.wrapper":  c.Capsule.Wrapper,
	}
	for _, field := range slices.Sorted(maps.Keys(required)) {
		if strings.TrimSpace(required[field]) == "" {
			return invalid(field, "must not be empty")
		}
	}

	for field, ext := range map[string]string{"markup_extension": c.MarkupExtension, "html.extension": c.HTML.Extension} {
		if strings.HasPrefix(ext, ".") {
			return invalid(field, "must be given without a leading dot")
		}
	}
	if filepath.Clean(c.HTML.Output) == filepath.Clean(c.Capsule.Output) {
		return invalid("capsule.output", "must differ from html.output")
	}
	out, src := filepath.Clean(c.OutputDir), filepath.Clean(c.SourceDir)
	switch {
	case out == src:
		return invalid("output_dir", "must differ from source_dir")
	case out == "." || within(out, src):
		return invalid("output_dir", "must not contain source_dir")
	case within(src, out):
		return invalid("output_dir", "must not be inside source_dir")
	}
	for field, wrapper := range map[string]string{"html.wrapper": c.HTML.Wrapper, "capsule.wrapper": c.Capsule.Wrapper} {
		if !strings.HasPrefix(filepath.Base(wrapper), c.HiddenPrefix) {
			return invalid(field, "must start with hidden_prefix so it is not published")
		}
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return invalid("logging.level", err.Error())
	}
	if _, err := ParseLogFormat(c.Logging.Format); err != nil {
		return invalid("logging.format", err.Error())
	}
	return nil
}

// within reports whether child lies below parent. The output root is removed
// by every build, so it must never enclose the sources.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func invalid(field, reason string) error {
	return ferrors.ConfigError("invalid configuration: "+field+" "+reason).
		WithContext("field", field).
		WithContext("reason", reason).
		Build()
}
