/*
Package dbpf reads and writes DBPF archives: a 96-byte header, payloads
addressed by (type, group, instance) keys and a trailing index of 20-byte
records.

Texture records hold FSH image containers (package fsh), optionally
QFS-compressed (package qfs) with a 4-byte length prefix. A legacy
compression directory record lists every compressed payload with its
uncompressed size; it is rebuilt on every save.

Opening an archive reads only the header and index. Images are parsed on
first access and cached. Add and Remove stage changes in memory; Save writes
a compacted archive to a separate stream, and SaveFile replaces a file
through a temporary sibling.

Typical flow:

	a, err := dbpf.OpenFile("textures.dat")
	if err != nil {
		return err
	}
	defer a.Close()

	img, err := a.LoadImage(tgi)
	if err != nil {
		return err
	}
	// ... edit img ...
	if err := a.Remove(tgi); err != nil {
		return err
	}
	a.Add(img, tgi, true)
	return a.SaveFile("textures.dat")
*/
package dbpf
