package mcq

import "log"

// Seed fills the bank with the built-in mock question set.
func Seed(b *Bank) {
	seed := []NewQuestion{
		{
			Text:       "What is the SI unit of force?",
			Options:    []string{"Newton", "Joule", "Watt", "Pascal"},
			Answer:     0,
			Subject:    "Physics",
			Difficulty: DifficultyEasy,
			University: "NUST",
			Year:       2023,
			Marks:      1,
			Tags:       []string{"mechanics", "units"},
		},
		{
			Text:        "A body moving in a circle at constant speed has",
			Options:     []string{"constant velocity", "zero acceleration", "centripetal acceleration", "no net force"},
			Answer:      2,
			Subject:     "Physics",
			Difficulty:  DifficultyMedium,
			University:  "UET Lahore",
			Year:        2022,
			Marks:       1,
			Explanation: "Speed is constant but direction changes, so the body accelerates toward the centre.",
			Tags:        []string{"circular-motion"},
		},
		{
			Text:       "Which gas is most abundant in Earth's atmosphere?",
			Options:    []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Argon"},
			Answer:     1,
			Subject:    "Chemistry",
			Difficulty: DifficultyEasy,
			University: "LUMS",
			Year:       2022,
			Marks:      1,
		},
		{
			Text:       "The hybridization of carbon in methane is",
			Options:    []string{"sp", "sp2", "sp3", "dsp2"},
			Answer:     2,
			Subject:    "Chemistry",
			Difficulty: DifficultyMedium,
			University: "COMSATS",
			Year:       2021,
			Marks:      1,
			Tags:       []string{"bonding"},
		},
		{
			Text:       "Which organelle is known as the powerhouse of the cell?",
			Options:    []string{"Ribosome", "Nucleus", "Mitochondrion", "Golgi apparatus"},
			Answer:     2,
			Subject:    "Biology",
			Difficulty: DifficultyEasy,
			University: "Aga Khan University",
			Year:       2023,
			Marks:      1,
		},
		{
			Text:        "The derivative of sin(x) with respect to x is",
			Options:     []string{"cos(x)", "-cos(x)", "-sin(x)", "tan(x)"},
			Answer:      0,
			Subject:     "Mathematics",
			Difficulty:  DifficultyEasy,
			University:  "FAST-NUCES",
			Year:        2023,
			Marks:       1,
			Explanation: "d/dx sin(x) = cos(x).",
			Tags:        []string{"calculus"},
		},
		{
			Text:       "Choose the correct sentence.",
			Options:    []string{"He don't like tea.", "He doesn't likes tea.", "He doesn't like tea.", "He not like tea."},
			Answer:     2,
			Subject:    "English",
			Difficulty: DifficultyEasy,
			Marks:      1,
			Tags:       []string{"grammar"},
		},
		{
			Text:       "The integral of 1/x dx (x > 0) is",
			Options:    []string{"x ln x + C", "ln x + C", "1/x² + C", "e^x + C"},
			Answer:     1,
			Subject:    "Mathematics",
			Difficulty: DifficultyHard,
			University: "GIKI",
			Year:       2022,
			Marks:      2,
			Tags:       []string{"calculus", "integration"},
		},
	}
	for _, nq := range seed {
		nq := nq
		if _, err := b.Add(nq); err != nil {
			log.Printf("mcq.Seed: %v", err)
		}
	}
}
