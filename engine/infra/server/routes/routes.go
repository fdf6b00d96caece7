package routes

// Base returns the API base path.
func Base() string {
	return "/api"
}

// Agents returns the structured-output agents base path (e.g., "/api/agents").
func Agents() string {
	return Base() + "/agents"
}

// TTS returns the narration base path.
func TTS() string {
	return Base() + "/tts"
}

// Podcast returns the podcast base path.
func Podcast() string {
	return Base() + "/podcast"
}

// Export returns the document export base path.
func Export() string {
	return Base() + "/export"
}

// LLM returns the generic completion base path.
func LLM() string {
	return Base() + "/llm"
}

// Health returns the health check path.
func Health() string {
	return Base() + "/health"
}
