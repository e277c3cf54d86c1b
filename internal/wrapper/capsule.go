package wrapper

// Capsule wraps a gemtext source verbatim. The source already is capsule
// markup, so the body is not transformed in any way.
func Capsule(tpl Template, source string) string {
	return tpl.Splice(source)
}
