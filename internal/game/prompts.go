package game

import (
	"fmt"
	"math/rand"
)

// DefaultPrompts seed the prompt pool and back it up when the pool is empty.
var DefaultPrompts = []string{
	"A cat running a marathon",
	"A pizza on vacation",
	"A shark wearing a tuxedo",
	"A dragon afraid of the dark",
	"A dog teaching a yoga class",
	"A snowman at the beach",
	"A penguin flying a plane",
	"An octopus doing the dishes",
	"A robot falling in love",
	"A banana in a fist fight",
	"A ghost at a job interview",
	"A giraffe in an elevator",
	"A haunted vending machine",
	"A wizard stuck in traffic",
	"A cactus giving hugs",
	"A sloth winning a race",
	"Grandma on a skateboard",
	"A cow on the moon",
	"A tiny house on a turtle",
	"A toaster with feelings",
	"A pirate at the dentist",
	"An alien ordering coffee",
	"A knight fighting a vacuum cleaner",
	"A whale taking a bath",
	"A superhero doing laundry",
	"A mermaid in the desert",
	"A chicken crossing the galaxy",
	"A bear with a sore tooth",
	"A volcano with hiccups",
	"A dinosaur at a birthday party",
	"A cloud that rains spaghetti",
	"An owl reading the news",
}

// FallbackPrompt is used when a drawing arrives without any prompt text.
const FallbackPrompt = "A secret drawing"

// Assignment pairs a participant with the prompt they must draw.
type Assignment struct {
	ParticipantID string `json:"participantId"`
	Prompt        string `json:"prompt"`
}

// AssignPrompts shuffles pool and hands one prompt to each participant in order. Prompts in used are
// skipped while enough fresh ones remain; prompts repeat only when the pool is smaller than the table.
func AssignPrompts(participantIDs []string, pool []string, used map[string]bool, shuffle func(n int, swap func(i, j int))) []Assignment {
	if len(pool) == 0 {
		pool = DefaultPrompts
	}

	fresh := make([]string, 0, len(pool))
	for _, p := range pool {
		if !used[p] {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) < len(participantIDs) {
		fresh = append(fresh[:0], pool...)
	}

	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })

	out := make([]Assignment, len(participantIDs))
	for i, id := range participantIDs {
		out[i] = Assignment{ParticipantID: id, Prompt: fresh[i%len(fresh)]}
	}
	return out
}

// NewJoinCode returns a random four digit join code.
func NewJoinCode() string {
	return fmt.Sprintf("%04d", 1000+rand.Intn(9000))
}
