package enrich

// band maps probabilities up to limit (inclusive) to a replica count.
type band struct {
	limit    float64
	replicas int
}

var bands = []band{
	{0.025, 1},
	{0.05, 2},
	{0.1, 4},
	{0.2, 8},
	{0.4, 16},
	{0.8, 32},
}

// MaxReplicas is the count for probabilities above the last band.
const MaxReplicas = 64

// Replicas converts a topic probability into the number of topic tokens to emit.
// Non-positive probabilities emit nothing.
func Replicas(p float64) int {
	if p <= 0 {
		return 0
	}
	for _, b := range bands {
		if p <= b.limit {
			return b.replicas
		}
	}
	return MaxReplicas
}
