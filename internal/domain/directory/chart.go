package directory

import "sort"

// Chart is an in-memory snapshot of the reporting hierarchy, built from
// plain user records. It is read-only once constructed, so it is safe to
// share across concurrent readers.
type Chart struct {
	users map[string]User
	board []User
}

func NewChart(users []User) *Chart {
	chart := &Chart{users: make(map[string]User, len(users))}
	for _, user := range users {
		chart.users[user.ID] = user
		if user.Role == RoleBOD && user.Status == UserStatusActive {
			chart.board = append(chart.board, user)
		}
	}
	// Fixed ordering keeps board-member resolution deterministic.
	sort.Slice(chart.board, func(i, j int) bool { return chart.board[i].ID < chart.board[j].ID })
	return chart
}

func (c *Chart) User(id string) (User, bool) {
	user, ok := c.users[id]
	return user, ok
}

// Manager returns the nearest active manager above the given user, if any.
// Deactivated users in the chain are skipped so nothing routes to an
// account that can no longer act.
func (c *Chart) Manager(id string) (User, bool) {
	user, ok := c.users[id]
	if !ok {
		return User{}, false
	}
	seen := map[string]bool{user.ID: true}
	for user.ManagerID != "" && !seen[user.ManagerID] {
		seen[user.ManagerID] = true
		manager, ok := c.users[user.ManagerID]
		if !ok {
			return User{}, false
		}
		if manager.Status == UserStatusActive {
			return manager, true
		}
		user = manager
	}
	return User{}, false
}

// FirstBoardMember returns the active BOD user with the lowest id.
func (c *Chart) FirstBoardMember() (User, bool) {
	if len(c.board) == 0 {
		return User{}, false
	}
	return c.board[0], true
}
