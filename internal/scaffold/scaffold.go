// Package scaffold creates the starter layout of a new site: source tree,
// wrapper templates, sample pages, overlay directories and the config file.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"os"
	"path/filepath"
	"text/template"

	"git.home.luguber.info/inful/cosmodrome/internal/config"
	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
	"git.home.luguber.info/inful/cosmodrome/internal/fsutil"
)

//go:embed starter/*.tmpl
var starterFS embed.FS

// Status is what Scaffold did with one item.
type Status string

const (
	StatusCreated     Status = "created"
	StatusExists      Status = "exists"
	StatusOverwritten Status = "overwritten"
)

// Item is one directory or file of the starter layout.
type Item struct {
	Label  string
	Path   string
	Dir    bool
	Status Status
}

type starterData struct {
	Placeholder     string
	MarkupExtension string
	HTMLExtension   string
}

type entry struct {
	label    string
	path     string
	template string // empty for directories
	config   bool
}

// Scaffold lays out the starter site described by cfg below cfg.BaseDir.
// Existing files are kept unless force is set; existing directories are
// always kept. The items handled before a failure are returned with the error.
func Scaffold(cfg *config.Config, force bool) ([]Item, error) {
	data := starterData{
		Placeholder:     cfg.Placeholder,
		MarkupExtension: cfg.MarkupExtension,
		HTMLExtension:   cfg.HTML.Extension,
	}
	entries := []entry{
		{label: "base directory", path: cfg.BaseDir},
		{label: "source directory", path: cfg.SourcePath()},
		{label: "HTML wrapper", path: cfg.HTMLWrapperPath(), template: "wrapper.html.tmpl"},
		{label: "Gemtext wrapper", path: cfg.CapsuleWrapperPath(), template: "wrapper.gmi.tmpl"},
		{label: "index page", path: filepath.Join(cfg.SourcePath(), "index."+cfg.MarkupExtension), template: "index.gmi.tmpl"},
		{label: "about page", path: filepath.Join(cfg.SourcePath(), "about."+cfg.MarkupExtension), template: "about.gmi.tmpl"},
		{label: "WWW extras directory", path: cfg.HTMLOverlayPath()},
		{label: "Gemini extras directory", path: cfg.CapsuleOverlayPath()},
		{label: "site CSS", path: filepath.Join(cfg.HTMLOverlayPath(), "site.css"), template: "site.css.tmpl"},
		{label: "configuration", path: filepath.Join(cfg.BaseDir, config.FileName), config: true},
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{Label: e.label, Path: e.path, Dir: e.template == "" && !e.config}
		var err error
		if item.Dir {
			item.Status, err = ensureDir(e.path)
		} else {
			item.Status, err = writeStarter(e, cfg, data, force)
		}
		if err != nil {
			return items, ferrors.WrapError(err, ferrors.CategoryFileSystem, "initialize "+e.label).
				Fatal().WithContext("path", e.path).Build()
		}
		items = append(items, item)
	}
	return items, nil
}

func ensureDir(path string) (Status, error) {
	if exists, isDir := fsutil.Exists(path); exists {
		if !isDir {
			return "", errors.New("exists and is not a directory")
		}
		return StatusExists, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return StatusCreated, nil
}

func writeStarter(e entry, cfg *config.Config, data starterData, force bool) (Status, error) {
	status := StatusCreated
	if exists, isDir := fsutil.Exists(e.path); exists {
		if isDir {
			return "", errors.New("exists and is a directory")
		}
		if !force {
			return StatusExists, nil
		}
		status = StatusOverwritten
	}

	var content []byte
	var err error
	if e.config {
		content, err = cfg.Marshal()
	} else {
		content, err = render(e.template, data)
	}
	if err != nil {
		return "", err
	}
	if err := fsutil.WriteFile(e.path, content); err != nil {
		return "", err
	}
	return status, nil
}

func render(name string, data starterData) ([]byte, error) {
	tpl, err := template.ParseFS(starterFS, "starter/"+name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
