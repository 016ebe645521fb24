/*
Package sysexec runs external tools.

A Runner starts a program and reports its exit code together with everything
it has written to stdout and stderr. Check turns a failed run into an
application error with code core.EEXTERNALTOOL, so callers never have to
inspect exit codes themselves.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sysexec

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'swiftglyph.exec'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.exec")
}
