package health

import "context"

// StorePinger checks similarity store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// LexiconSizer reports how many senses the loaded lexicon holds.
type LexiconSizer interface {
	Len() int
}
