// Package gemtext converts gemtext documents into HTML body fragments.
//
// A document is processed one line at a time. Each trimmed line is classified
// into a Directive, and a Transpiler folds the directives through a small
// State value that tracks the open list, quote and preformatted blocks:
//
//	t := gemtext.NewTranspiler(gemtext.DefaultOptions())
//	body := t.RenderDocument(src)
//
// Step is a pure function from (State, Directive) to (State, fragments), so
// every transition can be tested in isolation. Finish closes whatever block is
// still open at end of input; the output of Render is always balanced.
package gemtext
