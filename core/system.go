package core

import "context"

// ISystemService process-wide switches.
type ISystemService interface {
	// Paused reports whether mutating operations are disabled
	Paused(ctx context.Context) bool
	SetPaused(ctx context.Context, paused bool) error
}

// System stores process-wide information.
type System struct {
	Admins        []string
	BaseAssetID   string
	ShareAssetID  string
	CustodyUserID string
	TreasuryID    string
	Version       string
}

// IsAdmin is admin
func (s *System) IsAdmin(userID string) bool {
	if len(s.Admins) == 0 {
		return false
	}

	for _, a := range s.Admins {
		if a == userID {
			return true
		}
	}

	return false
}
