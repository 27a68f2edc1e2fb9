// Package tree provides helpers for walking a game tree through the
// cfr.Game contract by cloning before every action.
package tree

import (
	cfr "github.com/AndrewBlackwell/GRASP"
)

// Visit calls visitor for every node reachable from the given state,
// depth-first. The caller is responsible for positioning the state, e.g.
// by Reset(false) to walk the whole game.
func Visit(g cfr.Game, visitor func(g cfr.Game)) {
	visitor(g)
	if g.IsTerminal() {
		return
	}

	for a := 0; a < g.NumActions(); a++ {
		child := g.Clone()
		child.Apply(a)
		Visit(child, visitor)
	}
}

// VisitInfoSets calls visitor once for each distinct information set in
// the tree, with the acting player.
func VisitInfoSets(g cfr.Game, visitor func(player int, key string)) {
	seen := make(map[string]struct{})
	Visit(g, func(node cfr.Game) {
		if node.IsTerminal() || node.IsChance() {
			return
		}

		key := node.InfoSetKey()
		if _, ok := seen[key]; ok {
			return
		}

		visitor(node.CurrentPlayer(), key)
		seen[key] = struct{}{}
	})
}

// CountNodes returns the number of nodes in the tree.
func CountNodes(g cfr.Game) int {
	total := 0
	Visit(g, func(cfr.Game) { total++ })
	return total
}

// CountTerminalNodes returns the number of terminal nodes in the tree.
func CountTerminalNodes(g cfr.Game) int {
	total := 0
	Visit(g, func(node cfr.Game) {
		if node.IsTerminal() {
			total++
		}
	})
	return total
}

// CountInfoSets returns the number of distinct information sets.
func CountInfoSets(g cfr.Game) int {
	total := 0
	VisitInfoSets(g, func(int, string) { total++ })
	return total
}
