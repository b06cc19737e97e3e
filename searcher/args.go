package searcher

// Hyperparameters for MCTS

const CPuct = 1.0 // Exploration constant

const DirichletAlpha = 0.3    // Concentration of the root noise
const DirichletEpsilon = 0.25 // Weight of the noise against the priors

const DefaultSimulations = 500 // Simulations per move when none are given
