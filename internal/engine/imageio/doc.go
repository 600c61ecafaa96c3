// Package imageio is the codec boundary of the engine. It loads an image
// file into a non-premultiplied pixel buffer plus document metadata and
// writes a buffer back out in a named format.
//
// Decoding supports png, jpeg, gif, bmp, tiff and webp. Encoding supports
// all of those except webp. PNG files additionally carry the physical
// resolution (pHYs), offset (oFFs) and text tags (tEXt) of the document.
//
// Save writes to a temporary file in the destination directory and renames
// it into place, so a failed save never truncates an existing file.
package imageio
