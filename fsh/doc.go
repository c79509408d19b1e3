/*
Package fsh reads and writes SHPI texture containers (FSH files).

A container holds a 16-byte header, a directory of named offsets and one entry
per bitmap. Each entry starts with a 16-byte header whose code selects the
pixel format (DXT1, DXT3, 32-bit BGRA or 24-bit BGR), flags individual QFS
compression and chains to optional attachments. Bitmaps may carry an embedded
mip chain whose level count lives in the top nibble of misc word 4.

Decoded bitmaps keep color and alpha as separate planes. Lower mip levels are
not kept: Encode regenerates them from level 0 through a Resampler.
*/
package fsh
