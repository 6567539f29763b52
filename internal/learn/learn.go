// Package learn implements the learning updater: it turns one
// execution's captured output into a reward signal and folds that reward
// back into the association map.
package learn

import (
	"strings"

	"github.com/coriolis-dev/shdrift/internal/assoc"
	"github.com/coriolis-dev/shdrift/internal/obslog"
	"github.com/coriolis-dev/shdrift/internal/similarity"
	"github.com/coriolis-dev/shdrift/internal/vocab"
)

// Defaults for the reward/penalty/redundancy parameters, overridable via
// config.
const (
	DefaultRedundancyThreshold = 75.0
	DefaultReward              = 1
	DefaultPenalty             = 1
	DefaultStoreRedundant      = false
)

// Params bundles the tunable knobs an Update call needs.
type Params struct {
	RedundancyThreshold float64
	Reward              int
	Penalty             int
	StoreRedundant      bool
}

// DefaultParams returns the default reward/penalty/threshold values.
func DefaultParams() Params {
	return Params{
		RedundancyThreshold: DefaultRedundancyThreshold,
		Reward:              DefaultReward,
		Penalty:             DefaultPenalty,
		StoreRedundant:      DefaultStoreRedundant,
	}
}

// Update tokenizes output on whitespace, resolves each token against v
// (without adding any new word — see the vocabulary-growth binding
// decision), judges redundancy against obs, conditionally appends the
// tokenized line, and applies the resulting reward to every ordered pair of
// argument positions in cmd. It returns the applied reward (positive for
// novel output, negative for redundant). When no token of output is in v,
// it returns 0 and changes neither obs nor the association map.
//
// Locking follows the required order: obs before v. Redundancy judgement
// releases obs's lock before v is ever locked.
func Update(v *vocab.Vocabulary, obs *obslog.Log, cmd []int, output string, p Params) int {
	line := tokenize(v, output)

	if len(line) == 0 {
		return 0
	}

	reward := applyRedundancy(obs, line, p)

	applyReward(v, cmd, reward)

	return reward
}

// tokenize splits output on whitespace and resolves each field to a word
// index, dropping fields with no vocabulary entry.
func tokenize(v *vocab.Vocabulary, output string) []int {
	fields := strings.Fields(output)
	line := make([]int, 0, len(fields))

	for _, f := range fields {
		if idx, ok := v.Find(f); ok {
			line = append(line, idx)
		}
	}

	return line
}

// applyRedundancy judges line against obs under obs's lock, appends it when
// warranted, and returns the reward for that outcome.
func applyRedundancy(obs *obslog.Log, line []int, p Params) int {
	obs.Lock()
	defer obs.Unlock()

	judgement := similarity.Judge(line, obs.LenLocked(), obs.LineLocked, p.RedundancyThreshold)

	if !judgement.Redundant || p.StoreRedundant {
		stored := make([]int, len(line), len(line)+1)
		copy(stored, line)
		stored = append(stored, vocab.Terminator)
		obs.AppendLocked(stored)
	}

	if judgement.Redundant {
		return -p.Penalty
	}

	return p.Reward
}

// applyReward locks the vocabulary's association map and, for every ordered
// pair of distinct argument positions in cmd, nudges the association
// between the words at those positions by reward.
func applyReward(v *vocab.Vocabulary, cmd []int, reward int) {
	if reward == 0 {
		return
	}

	v.Lock()
	defer v.Unlock()

	a := v.Assoc()

	argc := argCount(cmd)
	for i := 0; i < argc; i++ {
		for j := 0; j < argc; j++ {
			if i == j {
				continue
			}

			a.Add(assoc.Key{WordI: cmd[i], PosI: i, WordK: cmd[j], PosK: j}, reward)
		}
	}
}

// argCount returns the number of argument slots in cmd before its
// terminator.
func argCount(cmd []int) int {
	for i, w := range cmd {
		if w == vocab.Terminator {
			return i
		}
	}

	return len(cmd)
}
