package telegram

// chunkText slices text into contiguous pieces of at most limit runes.
// Counting runes keeps multi-byte characters whole across message
// boundaries. Concatenating the result reproduces the input exactly.
func chunkText(text string, limit int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
