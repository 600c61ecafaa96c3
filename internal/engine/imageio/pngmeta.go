package imageio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"maps"
	"slices"

	"golang.org/x/text/encoding/charmap"

	"github.com/dshills/paintstorm/internal/engine/document"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// pHYs unit specifier for meters.
const unitMeter = 1

var errBadPNG = errors.New("malformed png")

type pngChunk struct {
	typ  string
	data []byte
}

// readPNGMeta extracts document metadata from the ancillary chunks of an
// encoded PNG. Unknown chunks are skipped; a truncated stream yields
// whatever was read before the damage.
func readPNGMeta(data []byte) (document.Meta, error) {
	var meta document.Meta
	chunks, err := scanPNGChunks(data)
	for _, c := range chunks {
		switch c.typ {
		case "pHYs":
			if len(c.data) == 9 && c.data[8] == unitMeter {
				meta.DotsPerMeterX = int(binary.BigEndian.Uint32(c.data[0:4]))
				meta.DotsPerMeterY = int(binary.BigEndian.Uint32(c.data[4:8]))
			}
		case "oFFs":
			if len(c.data) == 9 && c.data[8] == 0 {
				meta.Offset = image.Pt(
					int(int32(binary.BigEndian.Uint32(c.data[0:4]))),
					int(int32(binary.BigEndian.Uint32(c.data[4:8]))),
				)
			}
		case "tEXt":
			key, value, ok := bytes.Cut(c.data, []byte{0})
			if !ok || len(key) == 0 {
				continue
			}
			if meta.Text == nil {
				meta.Text = make(map[string]string)
			}
			meta.Text[latin1ToString(key)] = latin1ToString(value)
		}
	}
	return meta, err
}

func scanPNGChunks(data []byte) ([]pngChunk, error) {
	if !bytes.HasPrefix(data, []byte(pngSignature)) {
		return nil, errBadPNG
	}
	var chunks []pngChunk
	rest := data[len(pngSignature):]
	for len(rest) >= 12 {
		n := binary.BigEndian.Uint32(rest[0:4])
		if uint64(n)+12 > uint64(len(rest)) {
			return chunks, errBadPNG
		}
		typ := string(rest[4:8])
		chunks = append(chunks, pngChunk{typ: typ, data: rest[8 : 8+n]})
		rest = rest[12+n:]
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

// writePNGMeta inserts metadata chunks directly after IHDR of an encoded
// PNG. Text keys that PNG cannot represent are skipped.
func writePNGMeta(data []byte, meta document.Meta) ([]byte, error) {
	const ihdrEnd = len(pngSignature) + 4 + 4 + 13 + 4
	if len(data) < ihdrEnd || string(data[len(pngSignature)+4:len(pngSignature)+8]) != "IHDR" {
		return nil, errBadPNG
	}

	var extra bytes.Buffer
	if meta.DotsPerMeterX > 0 && meta.DotsPerMeterY > 0 {
		b := make([]byte, 9)
		binary.BigEndian.PutUint32(b[0:4], uint32(meta.DotsPerMeterX))
		binary.BigEndian.PutUint32(b[4:8], uint32(meta.DotsPerMeterY))
		b[8] = unitMeter
		writeChunk(&extra, "pHYs", b)
	}
	if meta.Offset != (image.Point{}) {
		b := make([]byte, 9)
		binary.BigEndian.PutUint32(b[0:4], uint32(int32(meta.Offset.X)))
		binary.BigEndian.PutUint32(b[4:8], uint32(int32(meta.Offset.Y)))
		writeChunk(&extra, "oFFs", b)
	}
	for _, key := range slices.Sorted(maps.Keys(meta.Text)) {
		if !validTextKey(key) {
			continue
		}
		b := append(stringToLatin1(key), 0)
		b = append(b, stringToLatin1(meta.Text[key])...)
		writeChunk(&extra, "tEXt", b)
	}
	if extra.Len() == 0 {
		return data, nil
	}

	out := make([]byte, 0, len(data)+extra.Len())
	out = append(out, data[:ihdrEnd]...)
	out = append(out, extra.Bytes()...)
	out = append(out, data[ihdrEnd:]...)
	return out, nil
}

func writeChunk(w *bytes.Buffer, typ string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	w.Write(n[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	w.WriteString(typ)
	w.Write(data)

	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	w.Write(n[:])
}

// validTextKey reports whether key is a legal tEXt keyword: 1-79 Latin-1
// characters without leading, trailing or doubled spaces.
func validTextKey(key string) bool {
	runes := []rune(key)
	if len(runes) == 0 || len(runes) > 79 {
		return false
	}
	for i, r := range runes {
		if r < 32 || r > 255 || (r > 126 && r < 161) {
			return false
		}
		if r == ' ' && (i == 0 || i == len(runes)-1 || runes[i-1] == ' ') {
			return false
		}
	}
	return true
}

func latin1ToString(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = charmap.ISO8859_1.DecodeByte(c)
	}
	return string(runes)
}

// stringToLatin1 encodes s as Latin-1, replacing unrepresentable
// characters with '?'.
func stringToLatin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}
