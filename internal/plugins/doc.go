// Package plugins is the registry of named processor plugins and the
// built-in ones: the text, json and yaml syntaxes and the uppercase and
// marker transformers. Preset files refer to plugins by their registered
// name; other packages add theirs from init (see transform for "remote").
package plugins
