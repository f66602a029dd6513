// Package utils provides small conversion helpers shared by the view
// decoders, chiefly turning loosely typed YAML or JSON scalars into
// attribute strings.
package utils
