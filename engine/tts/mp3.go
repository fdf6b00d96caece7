package tts

import "bytes"

const id3HeaderSize = 10

// JoinMP3 concatenates MP3 streams. ID3v2 tags are kept on the first part
// only so players do not stop at an embedded header.
func JoinMP3(parts ...[]byte) []byte {
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			p = stripID3v2(p)
		}
		buf.Write(p)
	}
	return buf.Bytes()
}

func stripID3v2(p []byte) []byte {
	if len(p) < id3HeaderSize || !bytes.HasPrefix(p, []byte("ID3")) {
		return p
	}
	// Tag size is a 28-bit synchsafe integer.
	size := int(p[6]&0x7f)<<21 | int(p[7]&0x7f)<<14 | int(p[8]&0x7f)<<7 | int(p[9]&0x7f)
	end := id3HeaderSize + size
	if p[5]&0x10 != 0 {
		end += id3HeaderSize
	}
	if end > len(p) {
		return p
	}
	return p[end:]
}
