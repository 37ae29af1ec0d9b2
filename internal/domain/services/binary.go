package services

import "bytes"

// sniffLen is how much of a document is inspected for binary content
const sniffLen = 512

// LooksBinary reports whether content is a compiled binary (ELF, Mach-O,
// universal Mach-O) or otherwise non-text data with NUL bytes near the start
func LooksBinary(content []byte) bool {
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	// ELF magic number (0x7F 'E' 'L' 'F')
	if len(head) >= 4 && head[0] == 0x7F && head[1] == 'E' && head[2] == 'L' && head[3] == 'F' {
		return true
	}

	if len(head) >= 4 {
		// 32-bit Mach-O: 0xFEEDFACE (big-endian) or 0xCEFAEDFE (little-endian)
		// 64-bit Mach-O: 0xFEEDFACF (big-endian) or 0xCFFAEDFE (little-endian)
		// Universal binary: 0xCAFEBABE
		magic := uint32(head[0])<<24 | uint32(head[1])<<16 | uint32(head[2])<<8 | uint32(head[3])
		switch magic {
		case 0xFEEDFACE, 0xCEFAEDFE, 0xFEEDFACF, 0xCFFAEDFE, 0xCAFEBABE:
			return true
		}
	}

	return bytes.IndexByte(head, 0) >= 0
}
