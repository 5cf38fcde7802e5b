package utils

// ChunkText splits a string into rune-safe pieces of at most size
// characters. Streaming endpoints use it to emit steady token frames.
func ChunkText(s string, size int) []string {
	if size <= 0 || s == "" {
		return nil
	}
	runes := []rune(s)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
