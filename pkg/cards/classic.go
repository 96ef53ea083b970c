package cards

// ClassicRules is the standard Set predicate. Each card id encodes
// FeatureCount features as base-FeatureSize digits and a set of
// FeatureSize cards is valid when every feature is either the same on all
// cards or different on all cards.
type ClassicRules struct {
	FeatureSize  int
	FeatureCount int
}

func NewClassicRules(featureSize, featureCount int) *ClassicRules {
	return &ClassicRules{
		FeatureSize:  featureSize,
		FeatureCount: featureCount,
	}
}

// DeckSize returns the number of distinct cards the features can encode.
func (r *ClassicRules) DeckSize() int {
	size := 1
	for i := 0; i < r.FeatureCount; i++ {
		size *= r.FeatureSize
	}
	return size
}

// Features decodes a card into its feature values.
func (r *ClassicRules) Features(card Card) []int {
	features := make([]int, r.FeatureCount)
	n := int(card)
	for i := 0; i < r.FeatureCount; i++ {
		features[i] = n % r.FeatureSize
		n /= r.FeatureSize
	}
	return features
}

func (r *ClassicRules) IsValidSet(cards []Card) bool {
	if len(cards) != r.FeatureSize {
		return false
	}
	for i := 0; i < len(cards); i++ {
		if cards[i] < 0 {
			return false
		}
		for j := i + 1; j < len(cards); j++ {
			if cards[i] == cards[j] {
				return false
			}
		}
	}

	decoded := make([][]int, len(cards))
	for i, card := range cards {
		decoded[i] = r.Features(card)
	}
	seen := make([]bool, r.FeatureSize)
	for f := 0; f < r.FeatureCount; f++ {
		for i := range seen {
			seen[i] = false
		}
		distinct := 0
		for _, features := range decoded {
			if !seen[features[f]] {
				seen[features[f]] = true
				distinct++
			}
		}
		if distinct != 1 && distinct != r.FeatureSize {
			return false
		}
	}
	return true
}

func (r *ClassicRules) ExistsValidSet(pool []Card) bool {
	if len(pool) < r.FeatureSize {
		return false
	}
	if r.FeatureSize == 3 {
		return r.existsTriple(pool)
	}
	return r.search(pool, 0, make([]Card, 0, r.FeatureSize))
}

// existsTriple completes every pair: for three values the third feature is
// the one making the sum divisible by three.
func (r *ClassicRules) existsTriple(pool []Card) bool {
	in := make(map[Card]struct{}, len(pool))
	for _, card := range pool {
		in[card] = struct{}{}
	}
	for i := 0; i < len(pool); i++ {
		a := r.Features(pool[i])
		for j := i + 1; j < len(pool); j++ {
			if pool[i] == pool[j] {
				continue
			}
			b := r.Features(pool[j])
			third, mult := 0, 1
			for f := 0; f < r.FeatureCount; f++ {
				third += ((6 - a[f] - b[f]) % 3) * mult
				mult *= 3
			}
			if Card(third) == pool[i] || Card(third) == pool[j] {
				continue
			}
			if _, ok := in[Card(third)]; ok {
				return true
			}
		}
	}
	return false
}

func (r *ClassicRules) search(pool []Card, start int, chosen []Card) bool {
	if len(chosen) == r.FeatureSize {
		return r.IsValidSet(chosen)
	}
	for i := start; i <= len(pool)-(r.FeatureSize-len(chosen)); i++ {
		if r.search(pool, i+1, append(chosen, pool[i])) {
			return true
		}
	}
	return false
}
