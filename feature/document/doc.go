// Package document is an in-memory DOM and the reconciliation adapter that
// keeps it in sync with declarative views.
//
// Views are trees of Item payloads: elements with a tag, attributes and an
// optional style, and text leaves. They can be built in Go with H and T or
// decoded from YAML and JSON with DecodeView:
//
//	tag: ul
//	attrs: {id: list}
//	style: {color: red, ":hover": {color: blue}}
//	children:
//	  - tag: li
//	    text: one
//	  - plain text
//
// Adapter maps reconciliation calls onto a Document: element attributes are
// synced as maps, the style of an element becomes a content-hashed class
// stored in the data-css attribute and collected in a stylesheet.Sheet, and
// Swap replaces a subtree wholesale. Session ties a document, its sheet and
// a driver.Driver together, and renders the result as HTML.
package document
