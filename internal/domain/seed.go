package domain

import "time"

// Predefined quiz names. Stored copies carry IsCustom=false and are protected
// from update and delete regardless of the configured reserved list.
const (
	TemplesQuizName        = "temples"
	ClassicalDanceQuizName = "classicalDance"
)

// PredefinedNames lists the built-in quiz slugs.
func PredefinedNames() []string {
	return []string{TemplesQuizName, ClassicalDanceQuizName}
}

// PredefinedQuizzes returns the built-in quizzes used to seed a fresh store.
// They also double as the demo content served when the store is unreachable.
func PredefinedQuizzes(now time.Time) []Quiz {
	return []Quiz{
		{
			Name:        TemplesQuizName,
			DisplayName: "Temples",
			IsCustom:    false,
			Topics:      templesTopics(),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Name:        ClassicalDanceQuizName,
			DisplayName: "Classical Dance",
			IsCustom:    false,
			Topics:      classicalDanceTopics(),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// DemoTopics returns fallback study content for name, defaulting to the
// temples set for unknown names so read failures never yield an empty screen.
func DemoTopics(name string) []Topic {
	if name == ClassicalDanceQuizName {
		return classicalDanceTopics()
	}
	return templesTopics()
}

func templesTopics() []Topic {
	return []Topic{
		{
			Reading: Reading{
				Heading: "Famous Temples of India",
				Points: []string{
					"The Tirupati Balaji Temple is one of the richest temples in the world.",
					"The Kashi Vishwanath Temple in Varanasi is dedicated to Lord Shiva.",
					"The Jagannath Temple in Puri is famous for its annual Rath Yatra.",
					"The Meenakshi Temple in Madurai is known for its stunning architecture.",
					"The Golden Temple in Amritsar is the holiest shrine for Sikhs.",
				},
			},
			Test: []Question{
				{
					Question: "Which temple is known for its annual Rath Yatra?",
					Options: []string{
						"Tirupati Balaji Temple",
						"Jagannath Temple",
						"Meenakshi Temple",
						"Golden Temple",
					},
					CorrectAnswer: 1,
				},
				{
					Question: "Which temple is dedicated to Lord Shiva?",
					Options: []string{
						"Kashi Vishwanath Temple",
						"Jagannath Temple",
						"Golden Temple",
						"Meenakshi Temple",
					},
					CorrectAnswer: 0,
				},
			},
		},
	}
}

func classicalDanceTopics() []Topic {
	return []Topic{
		{
			Reading: Reading{
				Heading: "Classical Dance Forms of India",
				Points: []string{
					"Bharatanatyam originated in Tamil Nadu and is one of the oldest dance forms.",
					"Kathak originated in North India and was developed in Mughal courts.",
					"Kathakali is from Kerala and is known for its elaborate costumes and makeup.",
					"Odissi from Odisha is characterized by fluid movements and sculpturesque poses.",
					"Kuchipudi from Andhra Pradesh combines dance, gesture, speech, and song.",
				},
			},
			Test: []Question{
				{
					Question: "Which dance form originated in Tamil Nadu?",
					Options: []string{
						"Kathak",
						"Bharatanatyam",
						"Kathakali",
						"Odissi",
					},
					CorrectAnswer: 1,
				},
			},
		},
	}
}
