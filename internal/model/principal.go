package model

// Principal is the authenticated identity extracted from an access token.
type Principal struct {
	UserID string
}
