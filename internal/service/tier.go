package service

import "github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"

// RewardTiers is the fixed commission band table, ordered by active client count.
var RewardTiers = []domain.RewardTier{
	{MinActiveClients: 0, MaxActiveClients: 5, Percent: 20},
	{MinActiveClients: 6, MaxActiveClients: 10, Percent: 25},
	{MinActiveClients: 11, MaxActiveClients: 20, Percent: 30},
	{MinActiveClients: 21, MaxActiveClients: 40, Percent: 35},
	{MinActiveClients: 41, MaxActiveClients: 80, Percent: 40},
	{MinActiveClients: 81, MaxActiveClients: -1, Percent: 50},
}

// LookupTier returns the commission percent and band index for a count of
// active referred clients. Boundary values belong to the lower band.
func LookupTier(activeClients int) (percent int, tierIndex int) {
	for i, t := range RewardTiers {
		if t.MaxActiveClients < 0 || activeClients <= t.MaxActiveClients {
			return t.Percent, i
		}
	}
	last := len(RewardTiers) - 1
	return RewardTiers[last].Percent, last
}
