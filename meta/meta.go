// meta/meta.go
package meta

import "time"

// ITERATIONS defines the number of CFR iterations per decision.
const ITERATIONS = 200

// DURATION defines the wall-clock budget per decision, zero for none.
const DURATION = 0 * time.Second

// DEPTH defines the action-history depth of a sub-decision, counted from the
// choice of the true board through the deciding player's move.
const DEPTH = 3

// LEAF_DEPTH defines the alpha-beta depth used to score leaves.
const LEAF_DEPTH = 1

// MAX_CANDIDATES bounds how many possible boards enter one sub-decision.
const MAX_CANDIDATES = 6

// MAX_TURNS defines the number of half-moves after which a game is drawn.
const MAX_TURNS = 200

// SEED seeds agent randomness when none is given.
const SEED = 1
