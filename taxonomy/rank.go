package taxonomy

import "fmt"

// Rank represents a taxon's position in the fixed specialization ladder.
type Rank string

const (
	// RankRoot is the synthetic root of the whole taxonomy.
	RankRoot Rank = "root"

	// RankDomain is the broadest biological grouping (e.g., eukaryota).
	RankDomain Rank = "domain"

	// RankKingdom groups domains into kingdoms (e.g., animalia, plantae).
	RankKingdom Rank = "kingdom"

	// RankPhylum groups kingdoms into phyla (e.g., arthropoda).
	RankPhylum Rank = "phylum"

	// RankClass groups phyla into classes (e.g., malacostraca).
	RankClass Rank = "class"

	// RankOrder groups classes into orders (e.g., decapoda).
	RankOrder Rank = "order"

	// RankFamily groups orders into families (e.g., penaeidae).
	RankFamily Rank = "family"

	// RankGenus groups families into genera (e.g., litopenaeus).
	RankGenus Rank = "genus"

	// RankSpecies identifies a single species (e.g., vannamei).
	RankSpecies Rank = "species"

	// RankSubspecies identifies a subspecies or geographic race.
	RankSubspecies Rank = "subspecies"

	// RankCultivar identifies a cultivated plant variety (e.g., honeycrisp).
	RankCultivar Rank = "cultivar"

	// RankVariety identifies a naturally occurring variety.
	RankVariety Rank = "variety"

	// RankBreed identifies a domesticated animal breed (e.g., wagyu).
	RankBreed Rank = "breed"

	// RankProduct identifies a derived food product (e.g., milk, flour).
	RankProduct Rank = "product"

	// RankForm identifies a physical presentation of a product (e.g., ground).
	RankForm Rank = "form"
)

// rankOrder maps ranks to their position in the specialization ladder.
// Lower indices are broader; a child's index must be >= its parent's.
var rankOrder = map[Rank]int{
	RankRoot:       0,
	RankDomain:     1,
	RankKingdom:    2,
	RankPhylum:     3,
	RankClass:      4,
	RankOrder:      5,
	RankFamily:     6,
	RankGenus:      7,
	RankSpecies:    8,
	RankSubspecies: 9,
	RankCultivar:   10,
	RankVariety:    11,
	RankBreed:      12,
	RankProduct:    13,
	RankForm:       14,
}

// IsValid returns true if the rank is one of the known ladder values.
func (r Rank) IsValid() bool {
	_, ok := rankOrder[r]
	return ok
}

// Index returns the rank's position in the specialization ladder.
// Returns -1 for invalid ranks.
func (r Rank) Index() int {
	if i, ok := rankOrder[r]; ok {
		return i
	}
	return -1
}

// String returns the string representation of the rank.
func (r Rank) String() string {
	return string(r)
}

// ParseRank parses a string into a Rank value.
// Returns an error if the string is not a valid rank.
func ParseRank(s string) (Rank, error) {
	rank := Rank(s)
	if !rank.IsValid() {
		return "", fmt.Errorf("invalid rank: %s", s)
	}
	return rank, nil
}

// CompareRank compares two ranks by ladder position.
// Returns:
//   - negative if r1 is broader than r2
//   - zero if r1 == r2
//   - positive if r1 is more specific than r2
func CompareRank(r1, r2 Rank) int {
	return r1.Index() - r2.Index()
}

// AtOrBelow returns true if r occurs at or after parent in the ladder,
// i.e. r is a legal rank for a child of a parent-ranked node.
func (r Rank) AtOrBelow(parent Rank) bool {
	return r.IsValid() && parent.IsValid() && r.Index() >= parent.Index()
}
