package qa

import (
	"math/rand/v2"
	"time"
)

// genericAnswers are the demo-flavor responses used in place of the canned
// fallback text when demo mode is on.
var genericAnswers = []string{
	"That's an interesting question. The document touches on several related themes worth exploring.",
	"Good question. While the document doesn't answer it directly, the surrounding sections may.",
	"The document approaches this topic from a different angle. Try asking about its main sections.",
	"I'd suggest narrowing the question to a specific term or passage from the document.",
	"The document contains related material, though not an exact answer to that question.",
}

// Picker selects a random generic answer. The random source is seedable so
// tests (and demo recordings) can pin its output.
type Picker struct {
	r *rand.Rand
}

// NewPicker creates a picker. A zero seed uses the current time.
func NewPicker(seed uint64) *Picker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Picker{r: rand.New(rand.NewPCG(seed, seed>>1))}
}

// Pick returns one of the generic answers.
func (p *Picker) Pick() string {
	return genericAnswers[p.r.IntN(len(genericAnswers))]
}
