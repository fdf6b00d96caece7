package podcast

import (
	"fmt"
	"strings"

	"github.com/plexify/plexify/engine/source"
)

func demoScript(projectID string, sources []source.Source) *Script {
	labels := make([]string, 0, len(sources))
	for _, s := range sources {
		labels = append(labels, s.Label)
	}
	topic := strings.Join(labels, ", ")
	if topic == "" {
		topic = "the selected documents"
	}
	return &Script{
		Title: fmt.Sprintf("Project %s briefing", projectID),
		Segments: []Segment{
			{Speaker: SpeakerHost, Text: fmt.Sprintf("Welcome to the project briefing. Today we are walking through %s.", topic)},
			{Speaker: SpeakerGuest, Text: "Thanks for having me. The headline is that the programme is on track, with a few risks worth watching."},
			{Speaker: SpeakerHost, Text: "What should the board focus on first?"},
			{Speaker: SpeakerGuest, Text: "Cost pressure on materials and the next planning milestone. Both have owners and mitigation plans."},
			{Speaker: SpeakerHost, Text: "Great. That is all for this briefing. Thanks for listening."},
		},
	}
}
