package patterns

import "github.com/aristath/turnips/internal/domain"

// aliasEntry binds a category to the literal labels people use for it.
type aliasEntry struct {
	pattern domain.PatternCategory
	aliases []string
}

// aliasTable is matched in declaration order; the first hit wins for both
// exact and fuzzy matching. It is never mutated after initialization.
var aliasTable = []aliasEntry{
	{domain.PatternDecreasing, []string{"decreasing", "d"}},
	{domain.PatternHighSpike, []string{"high spike", "big spike", "sudden spike", "bs", "ls"}},
	{domain.PatternSmallSpike, []string{"small spike", "slow spike", "gentle spike", "ss", "smol spike", "gentle", "small"}},
	{domain.PatternRandom, []string{"random", "fluctuating", "r", "rd"}},
}

// exactAliases indexes aliasTable for exact lookups.
var exactAliases = func() map[string]domain.PatternCategory {
	m := make(map[string]domain.PatternCategory)
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			if _, exists := m[alias]; !exists {
				m[alias] = entry.pattern
			}
		}
	}
	return m
}()

// AliasGroup is an exported copy of one alias table entry.
type AliasGroup struct {
	Pattern domain.PatternCategory `json:"pattern"`
	Aliases []string               `json:"aliases"`
}

// Aliases returns a copy of the alias table in matching order.
func Aliases() []AliasGroup {
	groups := make([]AliasGroup, len(aliasTable))
	for i, entry := range aliasTable {
		groups[i] = AliasGroup{
			Pattern: entry.pattern,
			Aliases: append([]string(nil), entry.aliases...),
		}
	}
	return groups
}
