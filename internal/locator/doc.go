// Package locator finds the cover image of an EPUB by reading the archive and
// its package document directly, without the structural checks of the epub
// package. It is the fallback path used when the EPUB reader cannot open a
// book or finds no usable image in it.
//
// Element and attribute lookups use local names only, so package documents
// with a default namespace, a prefixed namespace, or none at all are treated
// alike.
package locator
