// Package scene reads and writes scene documents and turns them into layout
// registries.
//
// A scene is a canvas size plus an ordered list of elements. Each element
// has an optional id, display attributes (label, fill) and the six anchor
// roles of [layout.Constraints]. The same model decodes from TOML, YAML and
// JSON:
//
//	[canvas]
//	width = 800
//	height = 600
//
//	[[element]]
//	id = "header"
//	height = 60
//	  [element.top]
//	  offset = 10
//
//	[[element]]
//	id = "body"
//	  [element.top]
//	  target = "header"
//	  align = "bottom"
//	  offset = 8
//
// An empty target refers to the canvas. Alignment names are matched without
// regard to case, and spaces or dashes count as underscores. Horizontal roles
// accept left, center and right (with start, middle and end as synonyms).
// Vertical roles accept top, middle and bottom (with start, center and end).
//
// # Validation
//
// [Decode] rejects unknown keys, malformed or duplicate ids, negative sizes
// and alignment names that do not fit the role's axis. A target naming an
// id that is not in the document is not a load error: the layout pass
// resolves it against the canvas and reports a diagnostic.
//
// # Building
//
// [Document.Build] returns a [layout.Registry] whose elements are [*Box]
// values, so render sinks can read each element's label and fill.
package scene
