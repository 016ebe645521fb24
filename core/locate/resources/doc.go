/*
Package resources resolves fonts for an atlas build.

As resource loading may be a time-consuming task, functions in this package
work in an async/await fashion by returning a promise. Functions named

	Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

A font name is resolved, in this order, as the path of a font file, as the
name of one of the Go fonts compiled into the binary, as a system font found by
go-findfont, and finally by asking fontconfig's fc-list, if configured.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'swiftglyph.resources'.
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.resources")
}
