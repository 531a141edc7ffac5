package preset

// Preset is a quick action offered by the widget: a label and the query it
// fills into the input.
type Preset struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Query string `json:"query"`
}

// Seed provides the default quick actions of the prompt generator.
func Seed() []Preset {
	return []Preset{
		{
			ID:    "writing",
			Label: "Writing prompts",
			Query: "Give me 5 creative writing prompts",
		},
		{
			ID:    "image",
			Label: "Image prompts",
			Query: "Generate image prompts for a fantasy landscape",
		},
		{
			ID:    "system",
			Label: "System prompt",
			Query: "Create a system prompt for a coding assistant",
		},
		{
			ID:    "marketing",
			Label: "Marketing copy",
			Query: "Write prompts for generating product launch announcements",
		},
	}
}
