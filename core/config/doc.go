/*
Package config assembles the configuration of an atlas build.

Configuration values come from three layers, later ones overriding earlier
ones: built-in defaults, an optional YAML file and command line flags. All
layers are held as a schuko.Configuration with flat, dot-separated keys, so
tracing can be configured from the same source:

	width: 512
	padding: 1
	texture: raw
	trace:
	  swiftglyph:
	    atlas: Debug

FromConfiguration validates the merged configuration and returns typed
options. Invalid settings are reported with code core.EINVALIDCONFIG before
anything else happens.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'swiftglyph.config'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.config")
}
