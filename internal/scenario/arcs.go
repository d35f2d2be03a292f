package scenario

// BuiltIn returns predefined autopilot scripts.
func BuiltIn() map[string]Script {
	return map[string]Script{
		"entrance": {
			Name:        "Entrance",
			Description: "Concentrate fire near the spawn point and keep adding towers there.",
			Phases: []Phase{
				{
					Name:       "setup",
					Placements: []Placement{{At: 0.08, Offset: 60}, {At: 0.12, Offset: -60}},
					Start:      true,
					Triggers:   []Trigger{{Event: EventMoney, Value: 100, Next: "reinforce"}},
				},
				{
					Name:       "reinforce",
					Placements: []Placement{{At: 0.05, Offset: -60}, {At: 0.15, Offset: 60}},
					Triggers:   []Trigger{{Event: EventMoney, Value: 150, Next: "depth"}},
				},
				{
					Name:       "depth",
					Placements: []Placement{{At: 0.2, Offset: 60}, {At: 0.25, Offset: -60}, {At: 0.3, Offset: 60}},
				},
			},
		},
		"gauntlet": {
			Name:        "Gauntlet",
			Description: "Spread towers evenly along the whole path as money allows.",
			Phases: []Phase{
				{
					Name:       "setup",
					Placements: []Placement{{At: 0.25, Offset: 60}, {At: 0.5, Offset: -60}},
					Start:      true,
					Triggers:   []Trigger{{Event: "enemy_defeated", Value: 10, Next: "escalation"}},
				},
				{
					Name:       "escalation",
					Placements: []Placement{{At: 0.1, Offset: 60}, {At: 0.75, Offset: -60}, {At: 0.9, Offset: 60}},
					Triggers:   []Trigger{{Event: "wave_started", Value: 3, Next: "climax"}},
				},
				{
					Name: "climax",
					Placements: []Placement{
						{At: 0.15, Offset: -60}, {At: 0.35, Offset: 60}, {At: 0.45, Offset: 60},
						{At: 0.6, Offset: -60}, {At: 0.8, Offset: 60}, {At: 0.95, Offset: -60},
					},
				},
			},
		},
		"idle": {
			Name:        "Idle",
			Description: "Start the run without placing towers.",
			Phases:      []Phase{{Name: "setup", Start: true}},
		},
	}
}
