package store

import "github.com/fragsync-dev/fragsync/pkg/state"

// SetUser replaces the profile wholesale. Pass nil to sign out.
func (s *Store) SetUser(profile *state.UserProfile) {
	s.mutate("user.set", func(st *state.Snapshot) {
		st.User = profile.Clone()
	})
}

// MergeUserPreferences shallow-merges the non-empty fields of prefs
// into the signed-in user's preference bag. With no user signed in it
// is a no-op.
func (s *Store) MergeUserPreferences(prefs state.Preferences) {
	s.mutate("user.preferences", func(st *state.Snapshot) {
		if st.User == nil {
			return
		}
		if st.User.Preferences == nil {
			st.User.Preferences = &state.Preferences{}
		}
		if prefs.Theme != "" {
			st.User.Preferences.Theme = prefs.Theme
		}
		if prefs.Locale != "" {
			st.User.Preferences.Locale = prefs.Locale
		}
	})
}

// User returns the signed-in profile, or nil.
func (s *Store) User() *state.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.User.Clone()
}

// SignedIn reports whether a user is signed in.
func (s *Store) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.User != nil
}
