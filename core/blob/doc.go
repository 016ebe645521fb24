/*
Package blob implements a self-relocating binary format for structured,
internally self-referential records.

A blob is a single byte buffer which may be read from storage and used
immediately, with no parsing pass other than one linear fixup over a table of
pointer slots. Layout, in little-endian 64-bit words:

	word 0                  format tag: magic "SGLB", version, word width, state
	word 1                  slot count n
	word 2 … n+1            slot offsets, relative to the start of the payload
	word n+2                slot count n, again
	byte (n+3)·8 …          payload

Every slot is a word inside the payload holding a tagged pointer: the top byte
is the kind of pointer, the lower 56 bits a signed displacement. For internal
pointers the displacement is relative to the slot's own position; external
pointers address a separately loaded region (e.g., a texture) declared by the
client at decode time.

Decoding validates the tag, both slot counts and every slot and target against
the payload bounds before it touches a single byte. Only then it rewrites each
slot into a resolved (absolute payload offset) pointer and marks the header as
decoded. Decoding a buffer a second time is refused. The resulting View owns
the buffer until Release hands it back.

Clients usually do not use this package directly, but rather a schema package
built on top of it, such as engine/fontbin.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package blob

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'swiftglyph.blob'
func tracer() tracing.Trace {
	return tracing.Select("swiftglyph.blob")
}
