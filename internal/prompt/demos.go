package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Demonstration task names
const (
	DemoTripletGenerator = "triplet_generator"
	DemoFactChecker      = "fact_checker"
	DemoAnswerGenerator  = "answer_generator"
)

// Demonstrations supplies few-shot example text for a task. numShot bounds
// how many examples are included; fewer are returned when the bank has
// fewer.
type Demonstrations interface {
	Examples(task string, numShot int) (string, error)
}

// StaticDemonstrations serves a fixed in-memory demonstration bank
type StaticDemonstrations struct {
	demos map[string][]string
}

// NewStaticDemonstrations returns the built-in demonstration bank
func NewStaticDemonstrations() *StaticDemonstrations {
	return &StaticDemonstrations{demos: builtinDemos()}
}

// LoadDemonstrations reads a YAML file mapping task names to example lists
// and overlays it on the built-in bank
func LoadDemonstrations(path string) (*StaticDemonstrations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read demonstration file: %w", err)
	}
	var overlay map[string][]string
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse demonstration file: %w", err)
	}

	demos := builtinDemos()
	for task, examples := range overlay {
		demos[task] = examples
	}
	return &StaticDemonstrations{demos: demos}, nil
}

// Examples returns up to numShot examples for the task, joined by blank
// lines. A numShot of zero returns an empty string.
func (d *StaticDemonstrations) Examples(task string, numShot int) (string, error) {
	examples, ok := d.demos[task]
	if !ok {
		return "", fmt.Errorf("no demonstrations for task %q", task)
	}
	if numShot < 0 {
		numShot = 0
	}
	if numShot > len(examples) {
		numShot = len(examples)
	}
	return strings.Join(examples[:numShot], "\n\n"), nil
}

func builtinDemos() map[string][]string {
	return map[string][]string{
		DemoTripletGenerator: {
			`Input text:
Marie Curie discovered polonium in 1898. She was born in Warsaw.
Triplets:
[["Marie Curie", "discovered", "polonium"], ["Marie Curie", "discovered polonium in", "1898"], ["Marie Curie", "was born in", "Warsaw"]]`,

			`Input text:
The Amazon River flows through Brazil and carries more water than any other river.
Triplets:
[["Amazon River", "flows through", "Brazil"], ["Amazon River", "carries more water than", "any other river"]]`,

			`Input text:
Okay, here is the summary you asked for.
Triplets:
[]`,
		},

		DemoFactChecker: {
			`Answer triplets:
-0: ["Earth", "orbits", "Sun"]
-1: ["Moon", "is made of", "cheese"]

Reference triplets:
-0: ["Earth", "orbits", "Sun"]
-1: ["Moon", "orbits", "Earth"]

Results:
0: True, 1: False`,

			`Answer triplets:
-0: ["Eiffel Tower", "is located in", "Paris"]

Reference triplets:
-0: ["Paris", "contains", "Eiffel Tower"]
-1: ["Paris", "is the capital of", "France"]

Results:
0: True`,
		},

		DemoAnswerGenerator: {
			`Reference documents:
-Mount Everest stands 8,849 metres above sea level and lies on the border between Nepal and China.

Question: How tall is Mount Everest?

Answer:
Mount Everest is 8,849 metres tall.`,

			`Reference documents:
-The Berlin Wall fell on 9 November 1989 after weeks of civil unrest.

Question: When did the Berlin Wall fall?

Answer:
The Berlin Wall fell on 9 November 1989.`,
		},
	}
}
