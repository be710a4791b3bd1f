package summarize

import "unicode"

// Split cuts text into chunks of at most maxChunkChars, never splitting
// mid-sentence. Sentence boundaries sit after '.', '!' or '?' followed by
// whitespace. Chunks keep their original joining whitespace, so concatenating
// them reproduces the input exactly. A single sentence longer than the limit
// forms its own oversized chunk.
func Split(text string, maxChunkChars int) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	cur := ""
	for _, sentence := range sentences(text) {
		if cur != "" && len(cur)+len(sentence) > maxChunkChars {
			chunks = append(chunks, cur)
			cur = sentence
			continue
		}
		cur += sentence
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}

	return chunks
}

func sentences(text string) []string {
	var out []string
	runes := []rune(text)

	byteStart := 0
	bytePos := 0
	for i, r := range runes {
		size := len(string(r))
		if isBoundary(r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			out = append(out, text[byteStart:bytePos+size])
			byteStart = bytePos + size
		}
		bytePos += size
	}
	if byteStart < len(text) {
		out = append(out, text[byteStart:])
	}

	return out
}

func isBoundary(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
