package agent

// envelopeOutput returns obj["output"] when present, otherwise obj itself.
func envelopeOutput(obj map[string]any) any {
	if out, ok := obj["output"]; ok {
		return out
	}
	return obj
}
