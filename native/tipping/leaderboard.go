package tipping

import "sort"

// upsertLeaderboard folds one tip into a board of at most MaxLeaderboardEntries
// entries sorted by amount, descending. Existing entries accumulate with
// saturation; isNew suppresses the count bump for the hit that created the
// payer's first record elsewhere.
func upsertLeaderboard(board []LeaderboardEntry, tipper [20]byte, amount uint64, isNew bool) []LeaderboardEntry {
	found := false
	for i := range board {
		if board[i].Tipper != tipper {
			continue
		}
		board[i].Amount = saturatingAdd(board[i].Amount, amount)
		if !isNew {
			board[i].Count = saturatingAdd(board[i].Count, 1)
		}
		found = true
		break
	}
	if !found {
		entry := LeaderboardEntry{Tipper: tipper, Amount: amount, Count: 1}
		if len(board) < MaxLeaderboardEntries {
			board = append(board, entry)
		} else {
			minIdx := 0
			for i := 1; i < len(board); i++ {
				if board[i].Amount < board[minIdx].Amount {
					minIdx = i
				}
			}
			if board[minIdx].Amount < amount {
				board[minIdx] = entry
			}
		}
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Amount > board[j].Amount
	})
	return board
}
