package brackets

import "github.com/pongarena/tournament-engine/models"

// JoinOrder пары в порядке регистрации: (1,2), (3,4), ...
func JoinOrder(roster []models.Participant) [][2]models.Participant {
	pairs := make([][2]models.Participant, 0, len(roster)/2)
	for i := 0; i+1 < len(roster); i += 2 {
		pairs = append(pairs, [2]models.Participant{roster[i], roster[i+1]})
	}
	return pairs
}

// Standard — классический посев: первый номер против последнего,
// сильнейшие разводятся по разным половинам сетки.
func Standard(roster []models.Participant) [][2]models.Participant {
	n := len(roster)
	if n < 2 {
		return nil
	}
	order := seedOrder(n)
	pairs := make([][2]models.Participant, 0, n/2)
	for _, idx := range order {
		pairs = append(pairs, [2]models.Participant{roster[idx[0]], roster[idx[1]]})
	}
	return pairs
}

// seedOrder строит пары индексов для полной сетки размера n (степень двойки).
// Для n=4: (0,3), (1,2); для n=8: (0,7), (3,4), (1,6), (2,5).
func seedOrder(n int) [][2]int {
	bracket := []int{0}
	for len(bracket) < n {
		next := make([]int, 0, len(bracket)*2)
		mirror := len(bracket)*2 - 1
		for _, seed := range bracket {
			next = append(next, seed, mirror-seed)
		}
		bracket = next
	}
	pairs := make([][2]int, 0, n/2)
	for i := 0; i+1 < len(bracket); i += 2 {
		pairs = append(pairs, [2]int{bracket[i], bracket[i+1]})
	}
	return pairs
}
