package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSeat_Clockwise(t *testing.T) {
	t.Parallel()

	// 4 players starting at seat 0 visit 0,1,2,3,0,...
	seat := 0
	visited := []int{seat}
	for range 4 {
		seat = NextSeat(Clockwise, seat, 4)
		visited = append(visited, seat)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 0}, visited)
}

func TestNextSeat_Counterclockwise(t *testing.T) {
	t.Parallel()

	// 4 players starting at seat 0 visit 0,3,2,1,0,...
	seat := 0
	visited := []int{seat}
	for range 4 {
		seat = NextSeat(Counterclockwise, seat, 4)
		visited = append(visited, seat)
	}
	assert.Equal(t, []int{0, 3, 2, 1, 0}, visited)
}

func TestNextSeat_TwoPlayers(t *testing.T) {
	t.Parallel()

	// Both directions alternate between the two seats
	assert.Equal(t, 1, NextSeat(Clockwise, 0, 2))
	assert.Equal(t, 0, NextSeat(Clockwise, 1, 2))
	assert.Equal(t, 1, NextSeat(Counterclockwise, 0, 2))
	assert.Equal(t, 0, NextSeat(Counterclockwise, 1, 2))
}
