// Package site builds the two published trees from one source tree.
//
// A build validates the source directory, loads both wrapper templates,
// removes and recreates the output root, walks the sources and routes each
// entry, then copies the static overlays on top:
//
//	src/notes/a.gmi  ->  srv/www/notes/a.html     (transpiled, HTML wrapper)
//	                 ->  srv/gemini/notes/a.gmi   (passthrough, capsule wrapper)
//	src/img/logo.png ->  srv/www/img/logo.png     (verbatim)
//	                 ->  srv/gemini/img/logo.png
//	src/_draft.gmi   ->  (ignored)
//
// Fatal problems (missing source, malformed wrapper, unwritable output root)
// abort the build. Problems with a single file are recorded in the Report and
// the walk continues.
package site
