package domain

// User is the display-name registry entry for a member.
type User struct {
	ID   int64
	Name string
}
